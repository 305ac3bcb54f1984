package config

import (
	"fmt"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/store"
)

// Preset names a reproducible run: an algorithm, its input and a speed
type Preset struct {
	Name      string  `json:"name"`
	Algorithm string  `json:"algorithm"`
	Seed      uint64  `json:"seed,omitempty"`
	Size      int     `json:"size,omitempty"`
	Values    []int   `json:"values,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
}

// Validate validates the preset on its own
func (p *Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("preset missing required 'name' field")
	}

	if p.Algorithm == "" {
		return fmt.Errorf("preset '%s' missing required 'algorithm' field", p.Name)
	}

	if p.Size < 0 {
		return fmt.Errorf("preset '%s' has negative 'size' %d", p.Name, p.Size)
	}

	if p.Speed < 0 {
		return fmt.Errorf("preset '%s' has negative 'speed' %g", p.Name, p.Speed)
	}

	if len(p.Values) > 0 && p.Size > 0 && len(p.Values) != p.Size {
		return fmt.Errorf("preset '%s' has %d values but 'size' %d", p.Name, len(p.Values), p.Size)
	}

	return nil
}

// ValidateAgainstRegistry checks that the algorithm resolves to exactly one
// registered producer
func (p *Preset) ValidateAgainstRegistry(registry *algorithms.Registry) error {
	if _, err := registry.Find(p.Algorithm); err != nil {
		return fmt.Errorf("preset '%s' references unknown algorithm: %w", p.Name, err)
	}
	return nil
}

// Options returns the producer options the preset describes
func (p *Preset) Options() algorithms.Options {
	return algorithms.Options{
		Seed:   p.Seed,
		Size:   p.Size,
		Values: append([]int(nil), p.Values...),
	}
}

// PlaybackSpeed returns the preset speed, or the default when unset
func (p *Preset) PlaybackSpeed() float64 {
	if p.Speed == 0 {
		return store.DefaultSpeed
	}
	return p.Speed
}
