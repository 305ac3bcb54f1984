package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/remote"
	"github.com/jdharms/algoviz/internal/stream"
	"github.com/jdharms/algoviz/internal/ui"
)

var (
	recordOut   string
	recordLimit int
	ctlRetries  int

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List the algorithm catalog",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the renderer stream and remote control servers without a prompt",
		Long: `serve runs headless: renderers attach over WebSocket and playback is driven
remotely, either by renderer commands or by 'algoviz ctl' over gRPC.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	recordCmd = &cobra.Command{
		Use:   "record <algorithm>",
		Short: "Write an algorithm's scene and steps as a JSON trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecord,
	}

	ctlCmd = &cobra.Command{
		Use:   "ctl <command> [argument]",
		Short: "Control a running 'algoviz serve' over gRPC",
		Long: `Commands:
  play, pause, stop, reset
  load <algorithm>
  speed <n>
  state     print the current state as JSON
  list      list the server's algorithms
  watch     print progress until interrupted`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCtl,
	}
)

func init() {
	recordCmd.Flags().StringVarP(&recordOut, "out", "o", "", "Output file (default stdout)")
	recordCmd.Flags().IntVar(&recordLimit, "limit", algorithms.DefaultTraceLimit, "Maximum number of steps to record")
	ctlCmd.Flags().IntVar(&ctlRetries, "retries", 3, "Connection attempts before giving up")
}

func runList(cmd *cobra.Command, args []string) error {
	title := color.New(color.FgCyan, color.Bold)
	slug := color.New(color.FgGreen)

	title.Println("Available algorithms:")
	for _, info := range algorithms.Builtin().List() {
		slug.Printf("  %-20s", info.Slug)
		fmt.Printf(" %-28s tier %d  %s\n", info.Name, info.Tier, info.Category)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := ui.NewConsoleLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	eng, err := newEngine(logger, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	if cfg.Algorithm != "" {
		if err := eng.LoadByName(cfg.Algorithm); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	streamServer := stream.NewServer(logger, eng, cfg.StreamHost, cfg.StreamPort, cfg.FrameInterval)
	remoteServer := remote.NewServer(logger, eng, cfg.GRPCHost, cfg.GRPCPort)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return streamServer.Run(ctx) })
	g.Go(func() error { return remoteServer.Run(ctx) })

	logger.WithFields(map[string]any{
		"stream": fmt.Sprintf("%s:%d", cfg.StreamHost, cfg.StreamPort),
		"grpc":   fmt.Sprintf("%s:%d", cfg.GRPCHost, cfg.GRPCPort),
	}).Info("algoviz serving")

	return g.Wait()
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := algorithms.Builtin()
	info, err := registry.Find(args[0])
	if err != nil {
		return err
	}
	p, err := registry.New(info.Slug, cfg.ProducerOptions())
	if err != nil {
		return err
	}

	trace, err := algorithms.Record(p, recordLimit)
	if err != nil {
		return err
	}

	out := os.Stdout
	if recordOut != "" {
		f, err := os.Create(recordOut)
		if err != nil {
			return fmt.Errorf("failed to create '%s': %w", recordOut, err)
		}
		defer f.Close()
		out = f
	}

	if _, err := trace.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	if recordOut != "" {
		color.New(color.FgGreen).Fprintf(os.Stderr, "[SUCCESS] Recorded %s to %s\n", trace.Describe(), recordOut)
	}
	return nil
}

func runCtl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := ui.NewConsoleLogger("warn")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := remote.NewClient(logger, cfg.GRPCHost, cfg.GRPCPort)
	if err := client.ConnectWithRetry(ctx, ctlRetries); err != nil {
		return err
	}
	defer client.Disconnect()

	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}

	callCtx, done := context.WithTimeout(ctx, 10*time.Second)
	defer done()

	switch strings.ToLower(args[0]) {
	case "play":
		return client.Play(callCtx)
	case "pause":
		return client.Pause(callCtx)
	case "stop":
		return client.Stop(callCtx)
	case "reset":
		return client.Reset(callCtx)
	case "load":
		if arg == "" {
			return fmt.Errorf("load requires an algorithm")
		}
		return client.Load(callCtx, arg)
	case "speed":
		speed, err := strconv.ParseFloat(strings.TrimSuffix(arg, "x"), 64)
		if err != nil {
			return fmt.Errorf("invalid speed '%s'", arg)
		}
		return client.SetSpeed(callCtx, speed)
	case "state":
		msg, err := client.State(callCtx)
		if err != nil {
			return err
		}
		text, err := remote.FormatJSON(msg)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	case "list":
		infos, err := client.Algorithms(callCtx)
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Printf("  %-20s %s\n", info.Slug, info.Name)
		}
		return nil
	case "watch":
		return client.Watch(ctx, func(s remote.Snapshot) error {
			fmt.Printf("[%s] %d/%d %s\n", s.Engine.State, s.State.Playback.CurrentStep, s.State.Playback.TotalSteps, s.State.Visual.Narrative)
			return nil
		})
	default:
		return fmt.Errorf("unknown ctl command '%s'", args[0])
	}
}
