package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/algorithms"
)

// PresetLoader handles loading and validation of preset files
type PresetLoader struct {
	logger     *logrus.Logger
	presetsDir string
	registry   *algorithms.Registry
}

// NewPresetLoader creates a new preset loader. Presets are checked against
// registry when it is non-nil.
func NewPresetLoader(logger *logrus.Logger, presetsDir string, registry *algorithms.Registry) *PresetLoader {
	return &PresetLoader{
		logger:     logger,
		presetsDir: presetsDir,
		registry:   registry,
	}
}

// LoadPreset loads and validates a preset by filename
func (pl *PresetLoader) LoadPreset(filename string) (*Preset, error) {
	presetFile := filepath.Join(pl.presetsDir, filename)

	pl.logger.WithField("file", presetFile).Debug("Loading preset")

	data, err := os.ReadFile(presetFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file '%s': %w", presetFile, err)
	}

	var preset Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse preset file '%s': %w", presetFile, err)
	}

	if err := preset.Validate(); err != nil {
		return nil, fmt.Errorf("preset validation failed for '%s': %w", presetFile, err)
	}

	if pl.registry != nil {
		if err := preset.ValidateAgainstRegistry(pl.registry); err != nil {
			return nil, fmt.Errorf("preset validation failed for '%s': %w", presetFile, err)
		}
	}

	pl.logger.WithFields(logrus.Fields{
		"preset":    preset.Name,
		"algorithm": preset.Algorithm,
	}).Info("Preset loaded successfully")

	return &preset, nil
}

// DiscoverPresets scans the presets directory and loads every valid preset.
// A missing directory yields no presets; any invalid file fails the scan.
func (pl *PresetLoader) DiscoverPresets() ([]*Preset, error) {
	pl.logger.WithField("dir", pl.presetsDir).Info("Discovering presets")

	if _, err := os.Stat(pl.presetsDir); os.IsNotExist(err) {
		pl.logger.WithField("dir", pl.presetsDir).Debug("Presets directory does not exist")
		return nil, nil
	}

	var presets []*Preset
	var failures []string

	err := filepath.WalkDir(pl.presetsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			return nil
		}

		relPath, err := filepath.Rel(pl.presetsDir, path)
		if err != nil {
			pl.logger.WithError(err).WithField("path", path).Warn("Failed to get relative path")
			return nil
		}

		preset, err := pl.LoadPreset(relPath)
		if err != nil {
			failures = append(failures, fmt.Sprintf("Failed to load preset '%s': %v", relPath, err))
			pl.logger.WithError(err).WithField("file", relPath).Error("Preset validation failed")
			return nil
		}

		presets = append(presets, preset)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan presets directory: %w", err)
	}

	if len(failures) > 0 {
		return nil, fmt.Errorf("preset validation failed:\n%s", strings.Join(failures, "\n"))
	}

	pl.logger.WithField("count", len(presets)).Info("Preset discovery completed")
	return presets, nil
}

// FindPreset finds a preset by name, falling back to a unique partial match
func FindPreset(presets []*Preset, name string) (*Preset, error) {
	var matches []*Preset

	for _, preset := range presets {
		if strings.EqualFold(preset.Name, name) {
			matches = append(matches, preset)
		}
	}

	if len(matches) == 0 {
		lower := strings.ToLower(name)
		for _, preset := range presets {
			if strings.Contains(strings.ToLower(preset.Name), lower) {
				matches = append(matches, preset)
			}
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("no preset found matching '%s'", name)
	}

	if len(matches) > 1 {
		var names []string
		for _, match := range matches {
			names = append(names, match.Name)
		}
		return nil, fmt.Errorf("multiple presets found matching '%s': %s", name, strings.Join(names, ", "))
	}

	return matches[0], nil
}
