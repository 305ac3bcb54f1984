package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/config"
	"github.com/jdharms/algoviz/internal/engine"
	"github.com/jdharms/algoviz/internal/store"
	"github.com/jdharms/algoviz/internal/stream"
	"github.com/jdharms/algoviz/internal/ui"
)

var (
	tracePath string

	rootCmd = &cobra.Command{
		Use:   "algoviz [algorithm]",
		Short: "Step-by-step algorithm playback",
		Long: `algoviz plays algorithms one step at a time and streams the resulting scene
to renderers over WebSocket. Playback can be driven from the interactive
prompt, the terminal view, or remotely over gRPC.

Examples:
  algoviz                         # Interactive mode - select from the catalog
  algoviz "quick sort"            # Load a specific algorithm by name
  algoviz bubble --tui --seed 42  # Reproducible run in the terminal view
  algoviz --trace bfs.json        # Replay a recorded trace`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runInteractive,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyConfigFile, "", "Config file (yaml, json or toml)")
	flags.String(config.KeyLogDir, "./logs", "Directory for log files")
	flags.String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	flags.String(config.KeyPresetsDir, "./configs/presets", "Directory containing preset files")
	flags.Uint64(config.KeySeed, 0, "Input seed, 0 for fresh randomness")
	flags.Int(config.KeySize, 0, "Input size, 0 for each algorithm's default")
	flags.Float64(config.KeySpeed, store.DefaultSpeed, "Initial playback speed")
	flags.String(config.KeyStreamHost, "localhost", "Renderer WebSocket host")
	flags.Int(config.KeyStreamPort, 1990, "Renderer WebSocket port")
	flags.String(config.KeyGRPCHost, "localhost", "Remote control gRPC host")
	flags.Int(config.KeyGRPCPort, 8191, "Remote control gRPC port")
	flags.Duration(config.KeyFrameInterval, stream.DefaultFrameInterval, "Minimum interval between state frames")

	rootCmd.Flags().Bool(config.KeyTUI, false, "Render in the terminal instead of the prompt")
	rootCmd.Flags().StringVar(&tracePath, "trace", "", "Replay a trace written by 'algoviz record'")

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())
	viper.BindPFlags(flags)
	viper.BindPFlag(config.KeyTUI, rootCmd.Flags().Lookup(config.KeyTUI))

	rootCmd.AddCommand(listCmd, serveCmd, recordCmd, ctlCmd)
}

// loadConfig resolves flags, environment and config file
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newEngine builds an engine with process metrics on its registry
func newEngine(logger *logrus.Logger, cfg *config.AppConfig) (*engine.Engine, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engineConfig := engine.DefaultConfig()
	engineConfig.Producer = cfg.ProducerOptions()
	engineConfig.Metrics = engine.NewMetrics(reg)

	eng := engine.NewEngine(logger, store.New(logger), algorithms.Builtin(), engineConfig)
	if err := eng.SetSpeed(cfg.Speed); err != nil {
		return nil, err
	}
	return eng, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := ui.InitializeLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("algoviz starting up")
	logger.WithFields(logrus.Fields{
		"presets-dir": cfg.PresetsDir,
		"seed":        cfg.Seed,
		"size":        cfg.Size,
		"speed":       cfg.Speed,
		"stream":      fmt.Sprintf("%s:%d", cfg.StreamHost, cfg.StreamPort),
		"tui":         cfg.TUI,
	}).Info("Configuration loaded")

	eng, err := newEngine(logger, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := signalContext()
	defer cancel()

	// Renderers can attach while the prompt or terminal view drives playback
	streamServer := stream.NewServer(logger, eng, cfg.StreamHost, cfg.StreamPort, cfg.FrameInterval)
	if err := streamServer.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start renderer stream")
	} else {
		defer streamServer.Stop(context.Background())
	}

	query := cfg.Algorithm
	if len(args) > 0 {
		query = args[0]
	}

	registry := algorithms.Builtin()
	loader := config.NewPresetLoader(logger, cfg.PresetsDir, registry)
	cli := ui.NewCLI(logger, registry, loader, os.Stdin, os.Stdout)

	if tracePath != "" {
		if err := loadTrace(eng, tracePath); err != nil {
			return err
		}
		if cfg.TUI {
			return ui.NewTerminalView(logger, eng, nil).Run(ctx)
		}
		return ui.NewController(logger, cli, eng).RunInteractiveMode(ctx)
	}

	if !cfg.TUI {
		err := cli.Start(ctx, eng, query)
		if errors.Is(err, ui.ErrUserQuit) {
			return nil
		}
		return err
	}

	selection, err := cli.Select(query)
	if err != nil {
		if errors.Is(err, ui.ErrUserQuit) {
			return nil
		}
		return err
	}
	if err := selection.Load(eng); err != nil {
		return err
	}
	return ui.NewTerminalView(logger, eng, nil).Run(ctx)
}

func loadTrace(eng *engine.Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open trace '%s': %w", path, err)
	}
	defer f.Close()

	trace, err := algorithms.ReadTrace(f)
	if err != nil {
		return err
	}
	return eng.Load(algorithms.NewTraceReplay(trace))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
