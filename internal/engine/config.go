// internal/engine/config.go
package engine

import (
	"time"

	"github.com/jdharms/algoviz/internal/algorithms"
)

// Pacing of each step kind in reference units, before dividing by speed
const (
	BaseInterval      = 800.0
	CompareInterval   = BaseInterval / 2
	SwapInterval      = BaseInterval
	CelebrateInterval = 50.0
	NodeInterval      = 500.0
	EdgeInterval      = 300.0
	VisualInterval    = 100.0
	HeightInterval    = 200.0
	OverwriteInterval = 150.0
)

// Config contains configuration for the playback engine
type Config struct {
	// PacingUnit is the wall-clock length of one reference unit at speed 1
	PacingUnit time.Duration
	// PausePollInterval is how often a paused loop re-reads the store flags.
	// Zero disables polling and the loop only wakes on Play or Stop.
	PausePollInterval time.Duration
	// ReloadDelay is the gap between Reset and the automatic reload
	ReloadDelay time.Duration
	// OverwriteRevert is the fixed, unscaled delay before an overwritten bar
	// returns to default
	OverwriteRevert time.Duration
	// CountSteps drains a second sequence on load to fill totalSteps
	CountSteps      bool
	MaxCountedSteps int
	// BufferSize is the capacity of each status subscriber channel
	BufferSize int
	// Producer options used when loading by name
	Producer algorithms.Options

	Clock   Clock
	Metrics *Metrics
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() *Config {
	return &Config{
		PacingUnit:        time.Millisecond,
		PausePollInterval: 100 * time.Millisecond,
		ReloadDelay:       100 * time.Millisecond,
		OverwriteRevert:   300 * time.Millisecond,
		CountSteps:        true,
		MaxCountedSteps:   algorithms.DefaultTraceLimit,
		BufferSize:        100,
	}
}
