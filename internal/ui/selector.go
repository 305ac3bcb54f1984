package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/config"
	"github.com/jdharms/algoviz/internal/engine"
)

// ErrUserQuit is returned when the user leaves a prompt
var ErrUserQuit = errors.New("user quit")

// Selection is an algorithm to load, optionally with preset input
type Selection struct {
	Info   algorithms.Info
	Preset *config.Preset
}

// Label returns a display name for the selection
func (s *Selection) Label() string {
	if s.Preset != nil {
		return fmt.Sprintf("%s (preset '%s')", s.Info.Name, s.Preset.Name)
	}
	return s.Info.Name
}

// Load loads the selection into eng, applying preset input and speed
func (s *Selection) Load(eng *engine.Engine) error {
	if s.Preset == nil {
		return eng.LoadByName(s.Info.Slug)
	}
	if err := eng.LoadByNameWith(s.Info.Slug, s.Preset.Options()); err != nil {
		return err
	}
	return eng.SetSpeed(s.Preset.PlaybackSpeed())
}

// Selector handles algorithm and preset selection
type Selector struct {
	logger   *logrus.Logger
	registry *algorithms.Registry
	presets  []*config.Preset
	cli      *CLI
}

// NewSelector creates a new selector
func NewSelector(logger *logrus.Logger, registry *algorithms.Registry, presets []*config.Preset, cli *CLI) *Selector {
	return &Selector{
		logger:   logger,
		registry: registry,
		presets:  presets,
		cli:      cli,
	}
}

// Resolve matches query against preset names first, then the registry
func (s *Selector) Resolve(query string) (*Selection, error) {
	if len(s.presets) > 0 {
		if preset, err := config.FindPreset(s.presets, query); err == nil {
			return s.fromPreset(preset)
		}
	}

	info, err := s.registry.Find(query)
	if err != nil {
		return nil, err
	}
	return &Selection{Info: info}, nil
}

func (s *Selector) fromPreset(preset *config.Preset) (*Selection, error) {
	info, err := s.registry.Find(preset.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("preset '%s': %w", preset.Name, err)
	}
	return &Selection{Info: info, Preset: preset}, nil
}

// choices returns algorithms followed by presets, in menu order
func (s *Selector) choices() []*Selection {
	var out []*Selection
	for _, info := range s.registry.List() {
		out = append(out, &Selection{Info: info})
	}
	for _, preset := range s.presets {
		sel, err := s.fromPreset(preset)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping preset with unknown algorithm")
			continue
		}
		out = append(out, sel)
	}
	return out
}

// SelectInteractive presents a numbered menu until the user picks an entry
func (s *Selector) SelectInteractive() (*Selection, error) {
	choices := s.choices()
	if len(choices) == 0 {
		return nil, fmt.Errorf("no algorithms available")
	}

	for {
		s.cli.printInfo("Available algorithms:")
		s.listChoices()

		input, ok := s.cli.readLine("\nSelect algorithm (1-" + strconv.Itoa(len(choices)) + "), a name, or 'q' to quit: ")
		if !ok {
			return nil, fmt.Errorf("failed to read input")
		}
		input = strings.TrimSpace(input)

		switch input {
		case "":
			continue
		case "q", "quit":
			return nil, ErrUserQuit
		}

		var selection *Selection
		if choice, err := strconv.Atoi(input); err == nil {
			if choice < 1 || choice > len(choices) {
				s.cli.printError(fmt.Sprintf("Invalid selection. Please enter a number between 1 and %d, or 'q' to quit.", len(choices)))
				continue
			}
			selection = choices[choice-1]
		} else {
			selection, err = s.Resolve(input)
			if err != nil {
				s.cli.printError(err.Error())
				continue
			}
		}

		s.cli.printSuccess(fmt.Sprintf("Selected: %s", selection.Label()))
		s.showInfo(selection)
		return selection, nil
	}
}

// listChoices displays a numbered list of algorithms and presets
func (s *Selector) listChoices() {
	for i, choice := range s.choices() {
		if choice.Preset != nil {
			s.cli.printf("  %2d. %-28s preset of %s\n", i+1, choice.Preset.Name, choice.Info.Slug)
			continue
		}
		s.cli.printf("  %2d. %-28s tier %d, %s\n", i+1, choice.Info.Name, choice.Info.Tier, choice.Info.Category)
	}
}

// showInfo displays the algorithm description
func (s *Selector) showInfo(selection *Selection) {
	if selection.Info.Description != "" {
		s.cli.printf("  %s\n", selection.Info.Description)
	}
	if p := selection.Preset; p != nil {
		s.cli.printf("  seed %d, size %d, speed %gx\n", p.Seed, p.Size, p.PlaybackSpeed())
	}
}
