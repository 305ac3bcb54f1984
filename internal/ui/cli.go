package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/config"
	"github.com/jdharms/algoviz/internal/engine"
)

// CLI handles the command-line interface for the visualizer
type CLI struct {
	logger   *logrus.Logger
	registry *algorithms.Registry
	loader   *config.PresetLoader
	scanner  *bufio.Scanner
	out      io.Writer
}

// syncWriter serializes writes from the command loop and the event monitor
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// NewCLI creates a new CLI interface. loader may be nil when presets are not
// used.
func NewCLI(logger *logrus.Logger, registry *algorithms.Registry, loader *config.PresetLoader, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		logger:   logger,
		registry: registry,
		loader:   loader,
		scanner:  bufio.NewScanner(in),
		out:      &syncWriter{w: out},
	}
}

// Start selects an algorithm, loads it into eng and enters interactive mode
func (c *CLI) Start(ctx context.Context, eng *engine.Engine, query string) error {
	c.printHeader()

	selection, err := c.Select(query)
	if err != nil {
		return err
	}

	controller := NewController(c.logger, c, eng)
	if err := controller.LoadSelection(selection); err != nil {
		return err
	}

	c.printInfo("Entering interactive mode...")
	if err := controller.RunInteractiveMode(ctx); err != nil {
		c.printWarning(fmt.Sprintf("Interactive mode ended: %v", err))
	}
	return nil
}

// Select resolves query to an algorithm or preset, or asks interactively when
// query is empty
func (c *CLI) Select(query string) (*Selection, error) {
	presets, err := c.discoverPresets()
	if err != nil {
		return nil, err
	}

	selector := NewSelector(c.logger, c.registry, presets, c)
	if query == "" {
		return selector.SelectInteractive()
	}

	selection, err := selector.Resolve(query)
	if err != nil {
		c.printError(fmt.Sprintf("Algorithm selection failed: %v", err))
		c.printInfo("Available algorithms:")
		selector.listChoices()
		return nil, err
	}
	c.printSuccess(fmt.Sprintf("Selected: %s", selection.Label()))
	return selection, nil
}

func (c *CLI) discoverPresets() ([]*config.Preset, error) {
	if c.loader == nil {
		return nil, nil
	}

	c.printInfo("Discovering presets...")
	presets, err := c.loader.DiscoverPresets()
	if err != nil {
		return nil, fmt.Errorf("failed to discover presets: %w", err)
	}
	if len(presets) > 0 {
		c.printSuccess(fmt.Sprintf("Found %d preset(s)", len(presets)))
	}
	return presets, nil
}

// readLine prints prompt and reads one line of input
func (c *CLI) readLine(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	if !c.scanner.Scan() {
		return "", false
	}
	return c.scanner.Text(), true
}

// printf writes uncolored output
func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// printHeader displays the application header
func (c *CLI) printHeader() {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintln(c.out, "┌─────────────────────────────────────────────────────────────┐")
	header.Fprintln(c.out, "│                          algoviz                            │")
	header.Fprintln(c.out, "│              step-by-step algorithm playback                │")
	header.Fprintln(c.out, "└─────────────────────────────────────────────────────────────┘")
	fmt.Fprintln(c.out)
}

// printInfo prints an informational message
func (c *CLI) printInfo(message string) {
	info := color.New(color.FgBlue)
	info.Fprintf(c.out, "[INFO] %s\n", message)
}

// printSuccess prints a success message
func (c *CLI) printSuccess(message string) {
	success := color.New(color.FgGreen)
	success.Fprintf(c.out, "[SUCCESS] %s\n", message)
}

// printError prints an error message
func (c *CLI) printError(message string) {
	errorColor := color.New(color.FgRed)
	errorColor.Fprintf(c.out, "[ERROR] %s\n", message)
}

// printWarning prints a warning message
func (c *CLI) printWarning(message string) {
	warning := color.New(color.FgYellow)
	warning.Fprintf(c.out, "[WARNING] %s\n", message)
}
