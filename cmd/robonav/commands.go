package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/robonav/internal/config"
	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/export"
	"github.com/san-kum/robonav/internal/logbuf"
	"github.com/san-kum/robonav/internal/logging"
	"github.com/san-kum/robonav/internal/metrics"
	"github.com/san-kum/robonav/internal/robot"
	"github.com/san-kum/robonav/internal/sim"
	"github.com/san-kum/robonav/internal/storage"
	"github.com/san-kum/robonav/internal/stream"
	"github.com/san-kum/robonav/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const logCapacity = 256

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log)
}

// newRobot builds a standalone robot for headless runs.
func newRobot(cfg *config.Config) (*robot.Robot, error) {
	return sim.BuildRobot(robot.DefaultRegistry(), cfg.Session())
}

func runInfo(cfg *config.Config) storage.RunInfo {
	return storage.RunInfo{
		Robot:      cfg.Robot,
		Integrator: cfg.Integrator,
		Duration:   cfg.Duration,
		InitPose:   cfg.InitPose,
		Target:     cfg.Target,
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	// the terminal belongs to the arena, so logs go to the ring buffer
	logs := logbuf.New(logCapacity)
	logger := logging.Tee(nil, logs.Core(level))
	logging.SetDefault(logger)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session, err := sim.NewSession(ctx, robot.DefaultRegistry(), cfg.Session(), logger)
	if err != nil {
		return err
	}
	defer session.Close()

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Stream.Enabled {
		srv := stream.NewServer(session, logger)
		g.Go(func() error { return srv.ListenAndServe(ctx, cfg.Stream.Addr) })
	}
	g.Go(func() error {
		defer cancel()
		return viz.Run(ctx, session, logs, viz.Arena{Width: cfg.Arena.Width, Height: cfg.Arena.Height}, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	r, err := newRobot(cfg)
	if err != nil {
		return err
	}
	s := sim.New(r)
	for _, m := range metrics.All(r.Limits()) {
		s.AddMetric(m)
	}

	logger.Debug("running", zap.String("robot", cfg.Robot), zap.Stringer("pose", cfg.InitPose))
	start := time.Now()
	result, err := s.Run(cmd.Context(), cfg.RunConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	info := runInfo(cfg)
	runID, err := st.Save(info, result)
	if err != nil {
		return err
	}
	logger.Info("run saved", zap.String("id", runID), zap.Int("ticks", result.Ticks))

	if jsonOut {
		if err := storage.ExportJSON(os.Stdout, info, result); err != nil {
			return err
		}
	} else {
		printSummary(runID, cfg, result, elapsed)
	}

	if strict && !result.Arrived {
		return fmt.Errorf("%w after %d ticks", dynamo.ErrNotArrived, result.Ticks)
	}
	return nil
}

func printSummary(runID string, cfg *config.Config, result *sim.Result, elapsed time.Duration) {
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("robot: %s\n", cfg.Robot)
	fmt.Printf("ticks: %d\n", result.Ticks)
	if result.Arrived {
		fmt.Printf("arrived at tick %d\n", result.ArrivalTick)
	} else {
		fmt.Println("did not arrive")
	}
	fmt.Printf("final pose: %s\n", result.FinalPose())
	fmt.Println(viz.Readout(result.FinalPose()))
	fmt.Println("\nmetrics:")
	for _, name := range []string{"path_length", "control_effort", "turn_ratio", "final_distance"} {
		if val, ok := result.Metrics[name]; ok {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	runs, err := storage.New(cfg.DataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tROBOT\tTIME\tTARGET\tTICKS\tARRIVED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t(%d, %d)\t%d\t%v\n",
			run.ID,
			run.Info.Robot,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Info.Target.X, run.Info.Target.Y,
			run.Ticks,
			run.Arrived,
		)
	}
	return w.Flush()
}

func loadRun(cmd *cobra.Command, runID string) (*storage.RunMetadata, *sim.Result, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	poses, cmds, err := st.LoadPoses(runID)
	if err != nil {
		return nil, nil, err
	}
	result := &sim.Result{
		Poses:       poses,
		Commands:    cmds,
		Ticks:       meta.Ticks,
		Arrived:     meta.Arrived,
		ArrivalTick: meta.ArrivalTick,
		Metrics:     meta.Metrics,
	}
	return meta, result, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if len(result.Poses) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("robot: %s\n", meta.Info.Robot)
	fmt.Printf("samples: %d\n\n", len(result.Poses))

	series := []struct {
		caption string
		value   func(dynamo.Pose) float64
	}{
		{"distance to target", func(p dynamo.Pose) float64 { return p.DistanceTo(meta.Info.Target) }},
		{"heading (rad)", func(p dynamo.Pose) float64 { return p.Heading }},
		{"x", func(p dynamo.Pose) float64 { return p.X }},
		{"y", func(p dynamo.Pose) float64 { return p.Y }},
	}

	for _, s := range series {
		data := make([]float64, len(result.Poses))
		for i, p := range result.Poses {
			data[i] = s.value(p)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	meta, err := storage.New(cfg.DataDir).Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta.Info, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	svg := export.TrajectoryToSVG(result.Poses, meta.Info.Target, svgWidth, svgHigh, "#00ff88")
	if svg == "" {
		return fmt.Errorf("run %s has fewer than two poses", meta.ID)
	}
	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tROBOT\tTARGET\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t(%d, %d)\t%s\n",
			name, cfg.Robot, cfg.Target.X, cfg.Target.Y, config.Presets[name].Description)
	}
	return w.Flush()
}

func listVariants(cmd *cobra.Command, args []string) error {
	reg := robot.DefaultRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tVMAX\tWMAX\tRADIUS\tPOLARITY\tDESCRIPTION")
	for _, name := range reg.List() {
		v, err := reg.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.2f\t%s\t%s\n",
			name,
			v.Limits.MaxVelocity,
			v.Limits.MaxAngularVelocity,
			v.Limits.TurningRadius(),
			v.Polarity,
			v.Description,
		)
	}
	return w.Flush()
}

func benchPresets(cmd *cobra.Command, args []string) error {
	reg := robot.DefaultRegistry()

	var jobs []sim.Job
	for _, name := range config.ListPresets() {
		for _, variant := range reg.List() {
			cfg := config.GetPreset(name)
			cfg.Robot = variant
			if cmd.Flags().Changed("max-ticks") {
				cfg.MaxTicks = maxTicks
			}
			r, err := newRobot(cfg)
			if err != nil {
				return err
			}
			jobs = append(jobs, sim.Job{
				Name:    name + "/" + variant,
				Robot:   r,
				Metrics: metrics.All(r.Limits()),
				Config:  cfg.RunConfig(),
			})
		}
	}

	start := time.Now()
	results, err := sim.RunBatch(cmd.Context(), jobs, parallel)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tTICKS\tARRIVED\tPATH\tEFFORT\tTURN")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%d\t%s\t%.2f\t%.3f\t%.3f\n",
			jobs[i].Name,
			res.Ticks,
			arrivedLabel(res.Arrived, res.ArrivalTick),
			res.Metrics["path_length"],
			res.Metrics["control_effort"],
			res.Metrics["turn_ratio"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ticks := 0
	for _, res := range results {
		ticks += res.Ticks
	}
	fmt.Printf("\n%d runs, %d ticks in %v (%.0f ticks/sec)\n",
		len(results), ticks, elapsed, float64(ticks)/math.Max(elapsed.Seconds(), 1e-9))
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	session, err := sim.NewSession(ctx, robot.DefaultRegistry(), cfg.Session(), logger)
	if err != nil {
		return err
	}
	defer session.Close()

	srv := stream.NewServer(session, logger)
	if err := srv.ListenAndServe(ctx, cfg.Stream.Addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
