package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/san-kum/robonav/internal/automation"
	"github.com/san-kum/robonav/internal/robot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sweepRadius float64
	sweepSteps  int
	trials      int
	seed        int64
)

func automationCommands() []*cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "drive through the waypoints of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run targets on a circle around the start pose",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepRadius, "radius", 50, "distance from start to each target")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of bearings")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run random targets inside the arena",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	monteCarloCmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs")

	return []*cobra.Command{scenarioCmd, sweepCmd, monteCarloCmd}
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger.Info("scenario loaded", zap.String("name", sc.Name), zap.Int("waypoints", len(sc.Waypoints)))

	legs, err := automation.RunScenario(cmd.Context(), sc, robot.DefaultRegistry(), logger)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== %s ===\n", sc.Name)
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEG\tTARGET\tTICKS\tARRIVED\tPATH")
	for i, leg := range legs {
		fmt.Fprintf(w, "%d\t(%d, %d)\t%d\t%s\t%.2f\n",
			i+1, leg.Waypoint.X, leg.Waypoint.Y,
			leg.Result.Ticks, arrivedLabel(leg.Result.Arrived, leg.Result.ArrivalTick),
			leg.Result.Metrics["path_length"])
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.BearingSweep{
		Robot:      cfg.Robot,
		Integrator: cfg.Integrator,
		InitPose:   cfg.InitPose,
		Radius:     sweepRadius,
		NumSteps:   sweepSteps,
		MaxTicks:   cfg.MaxTicks,
		Parallel:   parallel,
	}, robot.DefaultRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BEARING\tTARGET\tARRIVED\tPATH")
	for _, r := range results {
		fmt.Fprintf(w, "%.0f°\t(%d, %d)\t%s\t%.2f\n",
			r.Bearing*180/math.Pi, r.Target.X, r.Target.Y,
			arrivedLabel(r.Arrived, r.ArrivalTick), r.PathLength)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Robot:      cfg.Robot,
		Integrator: cfg.Integrator,
		InitPose:   cfg.InitPose,
		Width:      cfg.Arena.Width,
		Height:     cfg.Arena.Height,
		NumTrials:  trials,
		MaxTicks:   cfg.MaxTicks,
		Parallel:   parallel,
		Seed:       seed,
	}, robot.DefaultRegistry())
	if err != nil {
		return err
	}

	arrived, missed := automation.MonteCarloStats(results)
	ticks := 0
	for _, r := range results {
		if r.Arrived {
			ticks += r.ArrivalTick
		}
	}
	fmt.Printf("%d trials: %d arrived, %d missed\n", len(results), arrived, missed)
	if arrived > 0 {
		fmt.Printf("mean arrival tick: %.1f\n", float64(ticks)/float64(arrived))
	}
	return nil
}

func arrivedLabel(arrived bool, tick int) string {
	if arrived {
		return fmt.Sprintf("@%d", tick)
	}
	return "no"
}
