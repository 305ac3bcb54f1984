package ui

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/config"
	"github.com/jdharms/algoviz/internal/engine"
	"github.com/jdharms/algoviz/internal/store"
)

// lockedBuffer is a bytes.Buffer safe for the monitor goroutine
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEngine(t *testing.T) (*engine.Engine, *engine.TestClock) {
	t.Helper()
	logger := quietLogger()

	clock := engine.NewTestClock()
	cfg := engine.DefaultConfig()
	cfg.Clock = clock
	cfg.PausePollInterval = 0
	cfg.Metrics = engine.NewMetrics(nil)
	cfg.Producer = algorithms.Options{Seed: 21}

	eng := engine.NewEngine(logger, store.New(logger), algorithms.Builtin(), cfg)
	t.Cleanup(eng.Close)
	return eng, clock
}

func newTestCLI(input string, loader *config.PresetLoader) (*CLI, *lockedBuffer) {
	out := &lockedBuffer{}
	return NewCLI(quietLogger(), algorithms.Builtin(), loader, strings.NewReader(input), out), out
}

func presetLoader(t *testing.T) *config.PresetLoader {
	t.Helper()
	dir := t.TempDir()
	body := `{"name": "tiny reverse", "algorithm": "reverse-array", "values": [1, 2, 3], "speed": 2}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(body), 0644))
	return config.NewPresetLoader(quietLogger(), dir, algorithms.Builtin())
}

func TestSelectByQuery(t *testing.T) {
	cli, out := newTestCLI("", nil)

	sel, err := cli.Select("selection")
	require.NoError(t, err)
	assert.Equal(t, "selection-sort", sel.Info.Slug)
	assert.Nil(t, sel.Preset)
	assert.Contains(t, out.String(), "Selected: Selection Sort")

	_, err = cli.Select("nonexistent")
	assert.ErrorIs(t, err, algorithms.ErrNotFound)
	assert.Contains(t, out.String(), "Available algorithms:")
}

func TestSelectPrefersPresets(t *testing.T) {
	cli, _ := newTestCLI("", presetLoader(t))

	sel, err := cli.Select("tiny")
	require.NoError(t, err)
	require.NotNil(t, sel.Preset)
	assert.Equal(t, "reverse-array", sel.Info.Slug)
	assert.Equal(t, "Reverse Array (preset 'tiny reverse')", sel.Label())
}

func TestSelectInteractive(t *testing.T) {
	cli, out := newTestCLI("\n99\nnope\n2\n", nil)

	sel, err := cli.Select("")
	require.NoError(t, err)
	assert.Equal(t, "selection-sort", sel.Info.Slug)

	text := out.String()
	assert.Contains(t, text, "Invalid selection")
	assert.Contains(t, text, "no algorithm matching 'nope'")
}

func TestSelectInteractiveQuit(t *testing.T) {
	cli, _ := newTestCLI("q\n", nil)
	_, err := cli.Select("")
	assert.ErrorIs(t, err, ErrUserQuit)

	cli, _ = newTestCLI("", nil)
	_, err = cli.Select("")
	assert.Error(t, err)
}

func TestPresetSelectionAppliesInputAndSpeed(t *testing.T) {
	eng, _ := newTestEngine(t)
	cli, _ := newTestCLI("", presetLoader(t))

	sel, err := cli.Select("tiny reverse")
	require.NoError(t, err)
	require.NoError(t, sel.Load(eng))

	state := eng.Store().GetState()
	assert.Equal(t, 2.0, state.Playback.Speed)
	require.NotNil(t, state.Algorithm)
	assert.Equal(t, "reverse-array", state.Algorithm.Slug)

	var labels []string
	for _, e := range state.Visual.Entities {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"1", "2", "3"}, labels)
}

func TestControllerCommands(t *testing.T) {
	eng, clock := newTestEngine(t)
	cli, out := newTestCLI("", nil)
	ctrl := NewController(quietLogger(), cli, eng)

	require.NoError(t, ctrl.HandleCommand("load binary"))
	assert.Equal(t, engine.StateLoaded, eng.GetState())
	assert.Contains(t, out.String(), "Binary Search")

	require.NoError(t, ctrl.HandleCommand("speed 0.5x"))
	assert.Equal(t, 0.5, eng.Store().Playback().Speed)
	assert.Error(t, ctrl.HandleCommand("speed fast"))
	assert.ErrorIs(t, ctrl.HandleCommand("speed 0"), engine.ErrInvalidSpeed)
	require.NoError(t, ctrl.HandleCommand("+"))
	assert.Equal(t, 1.0, eng.Store().Playback().Speed)

	require.NoError(t, ctrl.HandleCommand("play"))
	require.Eventually(t, func() bool {
		return eng.GetState() == engine.StateComplete
	}, 2*time.Second, time.Millisecond)

	require.NoError(t, ctrl.HandleCommand("reset"))
	assert.Equal(t, engine.StateIdle, eng.GetState())
	assert.Equal(t, 1, clock.FireTimers())
	assert.Equal(t, engine.StateLoaded, eng.GetState())

	require.NoError(t, ctrl.HandleCommand("status"))
	assert.Contains(t, out.String(), "Engine Status: Loaded")

	require.NoError(t, ctrl.HandleCommand("code"))
	require.NoError(t, ctrl.HandleCommand(""))
	assert.ErrorContains(t, ctrl.HandleCommand("fly"), "unknown command")
	assert.ErrorContains(t, ctrl.HandleCommand("load"), "usage")
	assert.ErrorIs(t, ctrl.HandleCommand("quit"), errQuit)
}

func TestStartRunsInteractiveSession(t *testing.T) {
	eng, _ := newTestEngine(t)
	cli, out := newTestCLI("speed 2\nplay\nstatus\nquit\n", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, cli.Start(ctx, eng, "lcs"))

	text := out.String()
	assert.Contains(t, text, "Selected: Longest Common Subsequence")
	assert.Contains(t, text, "Available commands:")
	assert.Contains(t, text, "Speed 2x")
	require.Eventually(t, func() bool {
		return eng.GetState() != engine.StateRunning
	}, 2*time.Second, time.Millisecond)
}

func TestMonitorReportsEvents(t *testing.T) {
	eng, _ := newTestEngine(t)
	cli, out := newTestCLI("", nil)
	ctrl := NewController(quietLogger(), cli, eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.monitorEngineEvents(ctx)

	// the monitor registers asynchronously
	require.Eventually(t, func() bool {
		if err := eng.LoadByName("bubble-sort"); err != nil {
			return false
		}
		return strings.Contains(out.String(), "Loaded: Bubble Sort")
	}, 2*time.Second, 10*time.Millisecond)

	eng.Play()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Finished in")
	}, 2*time.Second, time.Millisecond)
	assert.Contains(t, out.String(), "Bubble Sort complete")
}

func TestInitializeLogger(t *testing.T) {
	dir := t.TempDir()
	logger, err := InitializeLogger(dir, "debug")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	files, err := filepath.Glob(filepath.Join(dir, "algoviz-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = InitializeLogger(dir, "loud")
	assert.ErrorContains(t, err, "invalid log level")

	_, err = NewConsoleLogger("nope")
	assert.Error(t, err)
}
