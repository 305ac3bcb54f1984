// internal/config/app.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/store"
)

// Configuration keys shared by flags, environment variables and config files
const (
	KeyConfigFile    = "config"
	KeyLogDir        = "log-dir"
	KeyLogLevel      = "log-level"
	KeyPresetsDir    = "presets-dir"
	KeyAlgorithm     = "algorithm"
	KeySeed          = "seed"
	KeySize          = "size"
	KeySpeed         = "speed"
	KeyStreamHost    = "stream-host"
	KeyStreamPort    = "stream-port"
	KeyGRPCHost      = "grpc-host"
	KeyGRPCPort      = "grpc-port"
	KeyTUI           = "tui"
	KeyFrameInterval = "frame-interval"
)

// EnvPrefix prefixes every environment variable, e.g. ALGOVIZ_LOG_LEVEL
const EnvPrefix = "ALGOVIZ"

// AppConfig holds process-wide settings
type AppConfig struct {
	LogDir        string
	LogLevel      string
	PresetsDir    string
	Algorithm     string
	Seed          uint64
	Size          int
	Speed         float64
	StreamHost    string
	StreamPort    int
	GRPCHost      string
	GRPCPort      int
	TUI           bool
	FrameInterval time.Duration
}

// DefaultAppConfig returns the built-in defaults
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		LogDir:        "./logs",
		LogLevel:      "info",
		PresetsDir:    "./configs/presets",
		Speed:         store.DefaultSpeed,
		StreamHost:    "localhost",
		StreamPort:    1990,
		GRPCHost:      "localhost",
		GRPCPort:      8191,
		FrameInterval: 33 * time.Millisecond,
	}
}

// SetDefaults registers the defaults on v so unset keys resolve
func SetDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault(KeyLogDir, d.LogDir)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyPresetsDir, d.PresetsDir)
	v.SetDefault(KeySpeed, d.Speed)
	v.SetDefault(KeyStreamHost, d.StreamHost)
	v.SetDefault(KeyStreamPort, d.StreamPort)
	v.SetDefault(KeyGRPCHost, d.GRPCHost)
	v.SetDefault(KeyGRPCPort, d.GRPCPort)
	v.SetDefault(KeyFrameInterval, d.FrameInterval)
}

// BindEnv makes every key readable from ALGOVIZ_* environment variables
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads the config file named by the config key, if any, and resolves
// every setting
func Load(v *viper.Viper) (*AppConfig, error) {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", file, err)
		}
	}

	cfg := &AppConfig{
		LogDir:        v.GetString(KeyLogDir),
		LogLevel:      v.GetString(KeyLogLevel),
		PresetsDir:    v.GetString(KeyPresetsDir),
		Algorithm:     v.GetString(KeyAlgorithm),
		Seed:          v.GetUint64(KeySeed),
		Size:          v.GetInt(KeySize),
		Speed:         v.GetFloat64(KeySpeed),
		StreamHost:    v.GetString(KeyStreamHost),
		StreamPort:    v.GetInt(KeyStreamPort),
		GRPCHost:      v.GetString(KeyGRPCHost),
		GRPCPort:      v.GetInt(KeyGRPCPort),
		TUI:           v.GetBool(KeyTUI),
		FrameInterval: v.GetDuration(KeyFrameInterval),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that flags alone cannot express
func (c *AppConfig) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("size must not be negative, got %d", c.Size)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %g", c.Speed)
	}
	if c.StreamPort < 0 || c.StreamPort > 65535 {
		return fmt.Errorf("stream-port out of range: %d", c.StreamPort)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("grpc-port out of range: %d", c.GRPCPort)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame-interval must be positive, got %s", c.FrameInterval)
	}
	return nil
}

// ProducerOptions returns the input options for newly built producers
func (c *AppConfig) ProducerOptions() algorithms.Options {
	return algorithms.Options{Seed: c.Seed, Size: c.Size}
}
