package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/san-kum/robonav/internal/config"
	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string

	robotName  string
	integrator string
	period     time.Duration
	duration   float64
	maxTicks   int
	startX     float64
	startY     float64
	heading    float64
	targetX    int
	targetY    int
	streamOn   bool
	streamAddr string

	jsonOut  bool
	strict   bool
	outFile  string
	svgWidth int
	svgHigh  int
	parallel int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "robonav",
		Short:         "point-to-point robot navigation simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	addSimFlags(rootCmd)
	rootCmd.Flags().BoolVar(&streamOn, "stream", false, "also serve the websocket pose stream")
	rootCmd.Flags().StringVar(&streamAddr, "addr", config.DefaultStreamAddr, "stream listen address")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and record it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print the trajectory as json")
	runCmd.Flags().BoolVar(&strict, "strict", false, "fail when the robot does not arrive")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a recorded trajectory as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a recorded trajectory as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHigh, "height", 600, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	variantsCmd := &cobra.Command{
		Use:   "variants",
		Short: "list robot variants",
		Args:  cobra.NoArgs,
		RunE:  listVariants,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run every preset on every variant",
		Args:  cobra.NoArgs,
		RunE:  benchPresets,
	}
	benchCmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs")
	benchCmd.Flags().IntVar(&maxTicks, "max-ticks", config.DefaultMaxTicks, "tick limit per run")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run a live simulation behind the websocket stream",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&streamAddr, "addr", config.DefaultStreamAddr, "listen address")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportSVGCmd,
		presetsCmd, variantsCmd, benchCmd, serveCmd)
	rootCmd.AddCommand(automationCommands()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&robotName, "robot", config.DefaultRobot, "robot variant")
	cmd.Flags().StringVar(&integrator, "integrator", "arc", "integrator (arc, euler)")
	cmd.Flags().DurationVar(&period, "period", 10*time.Millisecond, "live tick period")
	cmd.Flags().Float64Var(&duration, "duration", dynamo.DefaultDuration, "integration duration per tick")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", config.DefaultMaxTicks, "tick limit for headless runs")
	cmd.Flags().Float64Var(&startX, "x", 100, "initial x")
	cmd.Flags().Float64Var(&startY, "y", 100, "initial y")
	cmd.Flags().Float64Var(&heading, "heading", 0, "initial heading (rad)")
	cmd.Flags().IntVar(&targetX, "target-x", 150, "target x")
	cmd.Flags().IntVar(&targetY, "target-y", 100, "target y")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("robot") {
		cfg.Robot = robotName
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("period") {
		cfg.Period = period
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("max-ticks") {
		cfg.MaxTicks = maxTicks
	}
	if flags.Changed("x") {
		cfg.InitPose.X = startX
	}
	if flags.Changed("y") {
		cfg.InitPose.Y = startY
	}
	if flags.Changed("heading") {
		cfg.InitPose.Heading = dynamo.NormalizeAngle(heading)
	}
	if flags.Changed("target-x") {
		cfg.Target.X = targetX
	}
	if flags.Changed("target-y") {
		cfg.Target.Y = targetY
	}
	if flags.Changed("stream") {
		cfg.Stream.Enabled = streamOn
	}
	if flags.Changed("addr") {
		cfg.Stream.Addr = streamAddr
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
