// internal/ui/controller.go
package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/engine"
)

var errQuit = errors.New("quit")

// Controller drives the engine from typed commands and reports engine events
type Controller struct {
	logger *logrus.Logger
	cli    *CLI
	engine *engine.Engine
}

// NewController creates a new engine controller
func NewController(logger *logrus.Logger, cli *CLI, eng *engine.Engine) *Controller {
	return &Controller{
		logger: logger,
		cli:    cli,
		engine: eng,
	}
}

// LoadSelection loads the selection and reports the result
func (ec *Controller) LoadSelection(selection *Selection) error {
	ec.cli.printInfo(fmt.Sprintf("Loading %s...", selection.Label()))
	if err := selection.Load(ec.engine); err != nil {
		return fmt.Errorf("failed to load %s: %w", selection.Info.Slug, err)
	}
	ec.displayStatus()
	return nil
}

// RunInteractiveMode reads commands until quit, end of input or ctx is done
func (ec *Controller) RunInteractiveMode(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go ec.monitorEngineEvents(ctx)
	ec.displayCommands()

	for ctx.Err() == nil {
		line, ok := ec.cli.readLine("\nCommand (h for help): ")
		if !ok {
			break
		}

		if err := ec.HandleCommand(line); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			ec.cli.printError(fmt.Sprintf("Command error: %v", err))
		}
	}

	ec.engine.Stop()
	return nil
}

// HandleCommand applies one interactive command
func (ec *Controller) HandleCommand(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	command, args := fields[0], fields[1:]

	switch command {
	case "h", "help":
		ec.displayCommands()
	case "l", "list":
		ec.displayAlgorithms()
	case "load":
		if len(args) == 0 {
			return fmt.Errorf("usage: load <algorithm>")
		}
		selection, err := NewSelector(ec.logger, ec.cli.registry, nil, ec.cli).Resolve(strings.Join(args, " "))
		if err != nil {
			return err
		}
		return ec.LoadSelection(selection)
	case "p", "play":
		ec.engine.Play()
	case "pause":
		ec.engine.Pause()
	case "t", "toggle":
		ec.engine.TogglePlay()
	case "stop":
		ec.engine.Stop()
	case "r", "reset":
		ec.engine.Reset()
		ec.cli.printSuccess("Reset, reloading")
	case "speed":
		return ec.handleSpeed(args)
	case "+":
		ec.cli.printSuccess(fmt.Sprintf("Speed %gx", ec.engine.CycleSpeed(true)))
	case "-":
		ec.cli.printSuccess(fmt.Sprintf("Speed %gx", ec.engine.CycleSpeed(false)))
	case "s", "status":
		ec.displayStatus()
	case "code":
		ec.displayCode()
	case "q", "quit":
		return errQuit
	default:
		return fmt.Errorf("unknown command: %s (type 'h' for help)", command)
	}
	return nil
}

func (ec *Controller) handleSpeed(args []string) error {
	if len(args) == 0 {
		ec.cli.printInfo(fmt.Sprintf("Speed %gx", ec.engine.Store().Playback().Speed))
		return nil
	}

	speed, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "x"), 64)
	if err != nil {
		return fmt.Errorf("invalid speed '%s'", args[0])
	}
	if err := ec.engine.SetSpeed(speed); err != nil {
		return err
	}
	ec.cli.printSuccess(fmt.Sprintf("Speed %gx", speed))
	return nil
}

// displayCommands shows available interactive commands
func (ec *Controller) displayCommands() {
	ec.cli.printf("\nAvailable commands:\n")
	ec.cli.printf("  h, help         - Show this help\n")
	ec.cli.printf("  l, list         - List algorithms\n")
	ec.cli.printf("  load <name>     - Load an algorithm\n")
	ec.cli.printf("  p, play         - Start or resume playback\n")
	ec.cli.printf("  pause           - Pause playback\n")
	ec.cli.printf("  t, toggle       - Toggle play and pause\n")
	ec.cli.printf("  stop            - Stop playback\n")
	ec.cli.printf("  r, reset        - Reset and reload the algorithm\n")
	ec.cli.printf("  speed [n], +, - - Show, set or cycle the speed\n")
	ec.cli.printf("  s, status       - Show current status\n")
	ec.cli.printf("  code            - Show the source listing\n")
	ec.cli.printf("  q, quit         - Exit\n")
}

func (ec *Controller) displayAlgorithms() {
	for i, info := range ec.engine.Algorithms() {
		ec.cli.printf("  %2d. %-20s %s\n", i+1, info.Slug, info.Name)
	}
}

// displayStatus shows the current engine status
func (ec *Controller) displayStatus() {
	stats := ec.engine.GetStats()
	state := ec.engine.Store().GetState()

	ec.cli.printf("\n%s\n", strings.Repeat("─", 60))
	ec.cli.printf("Engine Status: %s\n", stats.State)
	if state.Algorithm != nil {
		ec.cli.printf("Algorithm: %s (%s)\n", state.Algorithm.Name, state.Algorithm.Category)
	}
	ec.cli.printf("Progress: %d/%d steps (%.1f%%)\n", stats.CurrentStep, stats.TotalSteps, stats.Progress)
	ec.cli.printf("Speed: %gx\n", stats.Speed)
	if state.Visual.Narrative != "" {
		ec.cli.printf("Narrative: %s\n", state.Visual.Narrative)
	}
	ec.cli.printf("%s\n", strings.Repeat("─", 60))
}

// displayCode prints the source listing with the highlighted line marked
func (ec *Controller) displayCode() {
	state := ec.engine.Store().GetState()
	if state.Algorithm == nil {
		ec.cli.printWarning("Nothing loaded")
		return
	}

	for i, line := range state.Algorithm.Lines() {
		marker := " "
		if i+1 == state.Visual.HighlightedCode {
			marker = ">"
		}
		ec.cli.printf("%s %3d  %s\n", marker, i+1, line)
	}
}

// monitorEngineEvents reports status changes and step narratives
func (ec *Controller) monitorEngineEvents(ctx context.Context) {
	statusChan := ec.engine.RegisterStatusChannel(ctx)
	steps := make(chan engine.StepEvent, 100)
	unregister := ec.engine.OnStep(func(ev engine.StepEvent) {
		select {
		case steps <- ev:
		default:
		}
	})
	defer unregister()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-steps:
			if ev.Narrative != "" {
				ec.cli.printf("  [%d] %s\n", ev.Index+1, ev.Narrative)
			}
		case ev, ok := <-statusChan:
			if !ok {
				return
			}
			ec.handleStatusEvent(ev)
		}
	}
}

// handleStatusEvent handles status events from the engine
func (ec *Controller) handleStatusEvent(event engine.StatusEvent) {
	switch event.State {
	case engine.StateRunning, engine.StateLoaded:
		ec.cli.printSuccess(event.Message)
	case engine.StatePaused, engine.StateStopped:
		ec.cli.printWarning(event.Message)
	case engine.StateComplete:
		stats := ec.engine.GetStats()
		ec.cli.printSuccess(event.Message)
		ec.cli.printSuccess(fmt.Sprintf("Finished in %d steps", stats.CurrentStep))
		ec.cli.printInfo("Type 'reset' to replay")
	case engine.StateError:
		ec.cli.printError(event.Message)
	default:
		ec.cli.printInfo(event.Message)
	}
}
