package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdharms/algoviz/internal/algorithms"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultAppConfig(), cfg)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ALGOVIZ_LOG_LEVEL", "debug")
	t.Setenv("ALGOVIZ_STREAM_PORT", "2000")
	t.Setenv("ALGOVIZ_SEED", "42")
	t.Setenv("ALGOVIZ_FRAME_INTERVAL", "16ms")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2000, cfg.StreamPort)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, algorithms.Options{Seed: 42}, cfg.ProducerOptions())
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "algoviz.yaml", "algorithm: quick-sort\nspeed: 2\ngrpc-port: 9000\n")

	v := viper.New()
	SetDefaults(v)
	v.Set(KeyConfigFile, filepath.Join(dir, "algoviz.yaml"))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "quick-sort", cfg.Algorithm)
	assert.Equal(t, 2.0, cfg.Speed)
	assert.Equal(t, 9000, cfg.GRPCPort)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"zero speed", KeySpeed, 0},
		{"negative size", KeySize, -1},
		{"port out of range", KeyStreamPort, 70000},
		{"zero frame interval", KeyFrameInterval, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}

	v := viper.New()
	v.Set(KeyConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load(v)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestPresetValidate(t *testing.T) {
	tests := []struct {
		name    string
		preset  Preset
		wantErr string
	}{
		{"valid", Preset{Name: "demo", Algorithm: "bubble-sort", Seed: 1}, ""},
		{"missing name", Preset{Algorithm: "bubble-sort"}, "'name'"},
		{"missing algorithm", Preset{Name: "demo"}, "'algorithm'"},
		{"negative size", Preset{Name: "demo", Algorithm: "dfs", Size: -2}, "'size'"},
		{"negative speed", Preset{Name: "demo", Algorithm: "dfs", Speed: -1}, "'speed'"},
		{"values disagree with size", Preset{Name: "demo", Algorithm: "dfs", Size: 3, Values: []int{1, 2}}, "values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.preset.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPresetAgainstRegistry(t *testing.T) {
	registry := algorithms.Builtin()

	ok := Preset{Name: "demo", Algorithm: "merge"}
	assert.NoError(t, ok.ValidateAgainstRegistry(registry))

	unknown := Preset{Name: "demo", Algorithm: "bogo-sort"}
	err := unknown.ValidateAgainstRegistry(registry)
	assert.ErrorIs(t, err, algorithms.ErrNotFound)

	ambiguous := Preset{Name: "demo", Algorithm: "sort"}
	assert.Error(t, ambiguous.ValidateAgainstRegistry(registry))
}

func TestPresetOptionsAndSpeed(t *testing.T) {
	p := Preset{Name: "demo", Algorithm: "bubble-sort", Seed: 9, Values: []int{3, 1, 2}}
	opts := p.Options()
	assert.Equal(t, algorithms.Options{Seed: 9, Values: []int{3, 1, 2}}, opts)

	opts.Values[0] = 99
	assert.Equal(t, 3, p.Values[0])

	assert.Equal(t, 1.0, p.PlaybackSpeed())
	p.Speed = 0.5
	assert.Equal(t, 0.5, p.PlaybackSpeed())
}

func TestDiscoverPresets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bubble.json", `{"name": "Small bubble", "algorithm": "bubble-sort", "values": [4, 2, 3, 1]}`)
	writeFile(t, dir, "graphs/bfs.json", `{"name": "Seeded BFS", "algorithm": "bfs", "seed": 7, "speed": 2}`)
	writeFile(t, dir, "notes.txt", "ignored")

	loader := NewPresetLoader(quietLogger(), dir, algorithms.Builtin())
	presets, err := loader.DiscoverPresets()
	require.NoError(t, err)
	require.Len(t, presets, 2)

	found, err := FindPreset(presets, "bfs")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), found.Seed)
	assert.Equal(t, 2.0, found.Speed)

	found, err = FindPreset(presets, "SMALL BUBBLE")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 3, 1}, found.Values)

	_, err = FindPreset(presets, "dijkstra")
	assert.Error(t, err)

	_, err = FindPreset(presets, "e")
	assert.ErrorContains(t, err, "multiple presets")
}

func TestDiscoverPresetsFailsOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"name": "good", "algorithm": "lcs"}`)
	writeFile(t, dir, "bad.json", `{"name": "bad", "algorithm": "no-such-algorithm"}`)
	writeFile(t, dir, "broken.json", `{"name":`)

	loader := NewPresetLoader(quietLogger(), dir, algorithms.Builtin())
	_, err := loader.DiscoverPresets()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
	assert.Contains(t, err.Error(), "broken.json")
}

func TestDiscoverPresetsMissingDirectory(t *testing.T) {
	loader := NewPresetLoader(quietLogger(), filepath.Join(t.TempDir(), "nope"), nil)
	presets, err := loader.DiscoverPresets()
	assert.NoError(t, err)
	assert.Empty(t, presets)
}
