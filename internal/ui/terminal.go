// internal/ui/terminal.go
package ui

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/engine"
	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/store"
)

const (
	codePanelWidth = 44
	minCodeScreen  = 100
)

// stateStyles maps entity states to terminal colors
var stateStyles = map[scene.State]tcell.Style{
	scene.StateDefault:   tcell.StyleDefault.Foreground(tcell.ColorSilver),
	scene.StateActive:    tcell.StyleDefault.Foreground(tcell.ColorYellow),
	scene.StateCompare:   tcell.StyleDefault.Foreground(tcell.ColorOrange),
	scene.StateSwap:      tcell.StyleDefault.Foreground(tcell.ColorRed),
	scene.StateLeft:      tcell.StyleDefault.Foreground(tcell.ColorAqua),
	scene.StateRight:     tcell.StyleDefault.Foreground(tcell.ColorFuchsia),
	scene.StateVisited:   tcell.StyleDefault.Foreground(tcell.ColorBlue),
	scene.StateSorted:    tcell.StyleDefault.Foreground(tcell.ColorGreen),
	scene.StateQueue:     tcell.StyleDefault.Foreground(tcell.ColorTeal),
	scene.StateWall:      tcell.StyleDefault.Foreground(tcell.ColorGray),
	scene.StatePath:      tcell.StyleDefault.Foreground(tcell.ColorLime),
	scene.StateObstacle:  tcell.StyleDefault.Foreground(tcell.ColorMaroon),
	scene.StateOverwrite: tcell.StyleDefault.Foreground(tcell.ColorPurple),
}

func styleFor(st scene.State) tcell.Style {
	if style, ok := stateStyles[st]; ok {
		return style
	}
	return tcell.StyleDefault
}

// TerminalView renders the store to a terminal and maps keys to engine
// controls
type TerminalView struct {
	logger *logrus.Logger
	engine *engine.Engine
	screen tcell.Screen
}

// NewTerminalView creates a terminal renderer. A nil screen opens the real
// terminal on Run.
func NewTerminalView(logger *logrus.Logger, eng *engine.Engine, screen tcell.Screen) *TerminalView {
	return &TerminalView{
		logger: logger,
		engine: eng,
		screen: screen,
	}
}

// Run draws every store change until the user quits or ctx is done
func (v *TerminalView) Run(ctx context.Context) error {
	if v.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		v.screen = screen
	}
	if err := v.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer v.screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := v.engine.Store().Subscribe(ctx)

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.logger.Info("Terminal view started")
	v.draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			v.draw()
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				v.logger.Info("Terminal view closed by user")
				return nil
			}
			v.draw()
		}
	}
}

// handleInput applies a key press. It returns false when the view should close.
func (v *TerminalView) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}

		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			v.engine.TogglePlay()
		case 'p':
			v.engine.Play()
		case 's':
			v.engine.Stop()
		case 'r':
			v.engine.Reset()
		case '+', '=':
			v.engine.CycleSpeed(true)
		case '-':
			v.engine.CycleSpeed(false)
		}

	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// draw renders one full frame
func (v *TerminalView) draw() {
	state := v.engine.Store().GetState()
	stats := v.engine.GetStats()

	v.screen.Clear()
	width, height := v.screen.Size()
	if width <= 0 || height < 6 {
		v.screen.Show()
		return
	}

	title := "algoviz"
	if state.Algorithm != nil {
		title = "algoviz  " + state.Algorithm.Name
	}
	bold := tcell.StyleDefault.Bold(true)
	v.drawText(0, 0, width, title, bold)
	status := fmt.Sprintf("[%s]  step %d/%d  %gx", stats.State, stats.CurrentStep, stats.TotalSteps, state.Playback.Speed)
	v.drawText(width-len(status), 0, len(status), status, bold)

	sceneWidth := width
	if state.Algorithm != nil && width >= minCodeScreen {
		sceneWidth = width - codePanelWidth - 1
		v.drawCode(state, sceneWidth+1, 2, codePanelWidth, height-5)
	}
	v.drawScene(state.Visual.Entities, 0, 2, sceneWidth, height-5)

	v.drawText(0, height-2, width, state.Visual.Narrative, tcell.StyleDefault)
	help := "space play/pause  p play  s stop  r reset  +/- speed  q quit"
	v.drawText(0, height-1, width, help, tcell.StyleDefault.Dim(true))

	v.screen.Show()
}

func (v *TerminalView) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	if x < 0 {
		x = 0
	}
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			return
		}
		v.screen.SetContent(x+col, y, r, nil, style)
		col++
	}
}

// drawCode draws the source listing with the highlighted line reversed
func (v *TerminalView) drawCode(state store.State, x, y, w, h int) {
	lines := state.Algorithm.Lines()
	highlighted := state.Visual.HighlightedCode

	// keep the highlighted line in view
	first := 0
	if highlighted > h {
		first = highlighted - h
	}
	for i := 0; i < h && first+i < len(lines); i++ {
		n := first + i + 1
		style := tcell.StyleDefault
		if n == highlighted {
			style = style.Reverse(true)
		}
		v.drawText(x, y+i, w, fmt.Sprintf("%3d %s", n, lines[first+i]), style)
	}
}

// drawScene draws bars as columns on a baseline and every other entity at
// its projected position
func (v *TerminalView) drawScene(entities []scene.Entity, x, y, w, h int) {
	if w <= 0 || h <= 2 {
		return
	}

	var bars, frames, points []scene.Entity
	for _, e := range entities {
		switch e.Kind {
		case scene.KindBar:
			bars = append(bars, e)
		case scene.KindFrame:
			frames = append(frames, e)
		case scene.KindSphere, scene.KindTile:
			points = append(points, e)
		}
	}

	if len(bars) > 0 {
		v.drawBars(bars, frames, x, y, w, h)
		return
	}
	v.drawPoints(points, x, y, w, h)
}

func (v *TerminalView) drawBars(bars, frames []scene.Entity, x, y, w, h int) {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Position.X() < bars[j].Position.X() })

	colWidth := w / len(bars)
	if colWidth > 4 {
		colWidth = 4
	}
	if colWidth < 1 {
		colWidth = 1
	}

	maxHeight := 0.0
	for _, b := range bars {
		maxHeight = math.Max(maxHeight, b.Height)
	}

	// bottom rows hold the value labels and the frame marker
	plot := h - 2
	for i, b := range bars {
		col := x + i*colWidth
		if col >= x+w {
			break
		}
		cells := 0
		if maxHeight > 0 && b.Height > 0 {
			cells = int(math.Max(1, math.Round(b.Height/maxHeight*float64(plot))))
		}
		style := styleFor(b.State)
		barWidth := max(1, colWidth-1)
		for row := 0; row < cells; row++ {
			for dx := 0; dx < barWidth; dx++ {
				v.screen.SetContent(col+dx, y+plot-1-row, '█', nil, style)
			}
		}
		v.drawText(col, y+plot, colWidth, fmt.Sprintf("%g", b.Value), style)
	}

	for _, f := range frames {
		lo, hi := f.Position.X()-f.Width/2, f.Position.X()+f.Width/2
		for i, b := range bars {
			if bx := b.Position.X(); bx >= lo && bx <= hi {
				for dx := 0; dx < colWidth; dx++ {
					v.screen.SetContent(x+i*colWidth+dx, y+plot+1, '▔', nil, styleFor(f.State))
				}
			}
		}
	}
}

// drawPoints projects spheres and tiles onto the plane: x to columns, z - y to
// rows
func (v *TerminalView) drawPoints(points []scene.Entity, x, y, w, h int) {
	if len(points) == 0 {
		return
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minR, maxR := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		r := p.Position.Z() - p.Position.Y()
		minX, maxX = math.Min(minX, p.Position.X()), math.Max(maxX, p.Position.X())
		minR, maxR = math.Min(minR, r), math.Max(maxR, r)
	}

	project := func(val, lo, hi float64, cells int) int {
		if hi == lo || cells <= 1 {
			return cells / 2
		}
		return int(math.Round((val - lo) / (hi - lo) * float64(cells-1)))
	}

	labelWidth := 3
	for _, p := range points {
		col := x + project(p.Position.X(), minX, maxX, w-labelWidth)
		row := y + project(p.Position.Z()-p.Position.Y(), minR, maxR, h)
		style := styleFor(p.State)

		switch p.Kind {
		case scene.KindTile:
			v.screen.SetContent(col, row, '■', nil, style)
		default:
			label := p.Label
			if label == "" {
				label = "o"
			}
			v.drawText(col, row, labelWidth, label, style)
		}
	}
}
