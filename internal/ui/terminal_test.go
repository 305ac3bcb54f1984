package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdharms/algoviz/internal/engine"
	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/store"
)

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

// row returns the text on line y
func row(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}

func screenText(screen tcell.Screen) string {
	_, h := screen.Size()
	lines := make([]string, h)
	for y := range lines {
		lines[y] = row(screen, y)
	}
	return strings.Join(lines, "\n")
}

func TestDrawBarsAndCode(t *testing.T) {
	eng, _ := newTestEngine(t)
	require.NoError(t, eng.LoadByName("bubble-sort"))

	screen := newSimScreen(t, 120, 30)
	view := NewTerminalView(quietLogger(), eng, screen)
	view.draw()

	text := screenText(screen)
	assert.Contains(t, row(screen, 0), "algoviz  Bubble Sort")
	assert.Contains(t, row(screen, 0), "[Loaded]")
	assert.Contains(t, text, "█")
	assert.Contains(t, text, "Loaded: Bubble Sort")
	assert.Contains(t, row(screen, 29), "q quit")
	assert.Contains(t, text, "  1 ")
}

func TestDrawHighlightsCodeLine(t *testing.T) {
	eng, _ := newTestEngine(t)
	require.NoError(t, eng.LoadByName("bubble-sort"))
	eng.Store().UpdateVisualState(store.VisualPatch{HighlightedCode: store.Ptr(2)})

	screen := newSimScreen(t, 120, 30)
	NewTerminalView(quietLogger(), eng, screen).draw()

	x := 120 - codePanelWidth
	_, _, style, _ := screen.GetContent(x, 3)
	_, _, attrs := style.Decompose()
	assert.NotZero(t, attrs&tcell.AttrReverse)

	_, _, style, _ = screen.GetContent(x, 2)
	_, _, attrs = style.Decompose()
	assert.Zero(t, attrs&tcell.AttrReverse)
}

func TestDrawProjectsSpheresAndTiles(t *testing.T) {
	eng, _ := newTestEngine(t)
	require.NoError(t, eng.LoadByName("dfs"))

	screen := newSimScreen(t, 60, 20)
	NewTerminalView(quietLogger(), eng, screen).draw()

	text := screenText(screen)
	for _, label := range []string{"0", "3", "6"} {
		assert.Contains(t, text, label)
	}
	assert.Contains(t, row(screen, 0), "Depth-First Search")

	require.NoError(t, eng.LoadByName("flood"))
	NewTerminalView(quietLogger(), eng, screen).draw()
	assert.Contains(t, screenText(screen), "■")
}

func TestDrawFrameUnderWindow(t *testing.T) {
	eng, _ := newTestEngine(t)
	require.NoError(t, eng.LoadByName("sliding"))

	screen := newSimScreen(t, 80, 24)
	NewTerminalView(quietLogger(), eng, screen).draw()
	assert.Contains(t, screenText(screen), "▔")
}

func TestDrawTinyScreen(t *testing.T) {
	eng, _ := newTestEngine(t)
	screen := newSimScreen(t, 10, 3)
	assert.NotPanics(t, func() { NewTerminalView(quietLogger(), eng, screen).draw() })
}

func TestKeysDriveEngine(t *testing.T) {
	eng, clock := newTestEngine(t)
	require.NoError(t, eng.LoadByName("insertion"))

	screen := newSimScreen(t, 80, 24)
	view := NewTerminalView(quietLogger(), eng, screen)
	key := func(r rune) bool {
		return view.handleInput(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}

	assert.True(t, key('+'))
	assert.Equal(t, 2.0, eng.Store().Playback().Speed)
	assert.True(t, key('-'))
	assert.True(t, key('-'))
	assert.Equal(t, 0.5, eng.Store().Playback().Speed)

	assert.True(t, key(' '))
	require.Eventually(t, func() bool {
		return eng.GetState() == engine.StateComplete
	}, 2*time.Second, time.Millisecond)

	assert.True(t, key('r'))
	assert.Equal(t, engine.StateIdle, eng.GetState())
	clock.FireTimers()
	assert.Equal(t, engine.StateLoaded, eng.GetState())

	assert.True(t, view.handleInput(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)))
	assert.False(t, key('q'))
	assert.False(t, view.handleInput(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestRunRedrawsAndQuits(t *testing.T) {
	eng, _ := newTestEngine(t)
	screen := tcell.NewSimulationScreen("UTF-8")
	screen.SetSize(80, 24)
	view := NewTerminalView(quietLogger(), eng, screen)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- view.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(row(screen, 0), "[Idle]")
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, eng.LoadByName("merge"))
	require.Eventually(t, func() bool {
		return strings.Contains(row(screen, 0), "Merge Sort")
	}, 2*time.Second, 5*time.Millisecond)

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("terminal view did not quit")
	}
}

func TestStyleForUnknownState(t *testing.T) {
	assert.Equal(t, tcell.StyleDefault, styleFor(scene.State("glowing")))
	assert.NotEqual(t, tcell.StyleDefault, styleFor(scene.StateSorted))
}
