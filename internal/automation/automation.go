// Package automation runs scripted and batch navigation experiments: multi
// waypoint scenarios, bearing sweeps and randomized target trials.
package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/metrics"
	"github.com/san-kum/robonav/internal/robot"
	"github.com/san-kum/robonav/internal/sim"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario drives one robot through a list of waypoints in order.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Robot       string          `yaml:"robot"`
	Integrator  string          `yaml:"integrator"`
	Duration    float64         `yaml:"duration"`
	InitPose    dynamo.Pose     `yaml:"init_pose"`
	MaxTicks    int             `yaml:"max_ticks"`
	Waypoints   []dynamo.Target `yaml:"waypoints"`
}

// LegResult is the outcome of driving to one waypoint.
type LegResult struct {
	Waypoint dynamo.Target
	Result   *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scenario := Scenario{
		Robot:    "standard",
		Duration: dynamo.DefaultDuration,
		InitPose: robot.DefaultPose,
		MaxTicks: 5000,
	}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Waypoints) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no waypoints", dynamo.ErrInvalidConfig, scenario.Name)
	}
	return &scenario, nil
}

// RunScenario executes every leg on the same robot, so each leg starts from
// where the previous one ended. A leg that does not arrive is recorded and
// the next waypoint is attempted from wherever the robot stopped.
func RunScenario(ctx context.Context, scenario *Scenario, reg *robot.Registry, logger *zap.Logger) ([]LegResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r, err := sim.BuildRobot(reg, sim.SessionConfig{
		Variant:    scenario.Robot,
		Duration:   scenario.Duration,
		Integrator: scenario.Integrator,
		Pose:       scenario.InitPose,
		Target:     scenario.Waypoints[0],
	})
	if err != nil {
		return nil, err
	}

	results := make([]LegResult, 0, len(scenario.Waypoints))
	for i, wp := range scenario.Waypoints {
		r.SetTarget(wp.X, wp.Y)

		s := sim.New(r)
		for _, m := range metrics.All(r.Limits()) {
			s.AddMetric(m)
		}

		result, err := s.Run(ctx, sim.RunConfig{MaxTicks: scenario.MaxTicks, StopOnArrival: true})
		if err != nil {
			return results, fmt.Errorf("leg %d: %w", i+1, err)
		}

		logger.Info("leg finished",
			zap.Int("leg", i+1),
			zap.Int("of", len(scenario.Waypoints)),
			zap.Int("target_x", wp.X),
			zap.Int("target_y", wp.Y),
			zap.Bool("arrived", result.Arrived),
			zap.Int("ticks", result.Ticks))

		results = append(results, LegResult{Waypoint: wp, Result: result})
	}

	return results, nil
}

// BearingSweep places targets on a circle around the start pose, one per
// bearing, and runs each to arrival.
type BearingSweep struct {
	Robot      string
	Integrator string
	InitPose   dynamo.Pose
	Radius     float64
	NumSteps   int
	MaxTicks   int
	Parallel   int
}

type SweepResult struct {
	Bearing     float64
	Target      dynamo.Target
	Arrived     bool
	ArrivalTick int
	PathLength  float64
}

// RunSweep executes a bearing sweep
func RunSweep(ctx context.Context, sweep *BearingSweep, reg *robot.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one step", dynamo.ErrInvalidConfig)
	}

	bearings := make([]float64, sweep.NumSteps)
	targets := make([]dynamo.Target, sweep.NumSteps)
	for i := range bearings {
		bearings[i] = 2 * math.Pi * float64(i) / float64(sweep.NumSteps)
		targets[i] = dynamo.Target{
			X: int(math.Round(sweep.InitPose.X + sweep.Radius*math.Cos(sweep.InitPose.Heading+bearings[i]))),
			Y: int(math.Round(sweep.InitPose.Y + sweep.Radius*math.Sin(sweep.InitPose.Heading+bearings[i]))),
		}
	}

	results, err := runTargets(ctx, reg, sweep.Robot, sweep.Integrator, sweep.InitPose, targets, sweep.MaxTicks, sweep.Parallel)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(results))
	for i, res := range results {
		out[i] = SweepResult{
			Bearing:     bearings[i],
			Target:      targets[i],
			Arrived:     res.Arrived,
			ArrivalTick: res.ArrivalTick,
			PathLength:  res.Metrics["path_length"],
		}
	}
	return out, nil
}

// MonteCarloConfig defines randomized target trials inside an arena.
type MonteCarloConfig struct {
	Robot      string
	Integrator string
	InitPose   dynamo.Pose
	Width      int
	Height     int
	NumTrials  int
	MaxTicks   int
	Parallel   int
	Seed       int64
}

type MonteCarloResult struct {
	TrialID     int
	Target      dynamo.Target
	Arrived     bool
	ArrivalTick int
}

// RunMonteCarlo drives to uniformly random targets in the arena.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, reg *robot.Registry) ([]MonteCarloResult, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: arena must be positive", dynamo.ErrInvalidConfig)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	targets := make([]dynamo.Target, cfg.NumTrials)
	for i := range targets {
		targets[i] = dynamo.Target{X: rng.Intn(cfg.Width + 1), Y: rng.Intn(cfg.Height + 1)}
	}

	results, err := runTargets(ctx, reg, cfg.Robot, cfg.Integrator, cfg.InitPose, targets, cfg.MaxTicks, cfg.Parallel)
	if err != nil {
		return nil, err
	}

	out := make([]MonteCarloResult, len(results))
	for i, res := range results {
		out[i] = MonteCarloResult{
			TrialID:     i,
			Target:      targets[i],
			Arrived:     res.Arrived,
			ArrivalTick: res.ArrivalTick,
		}
	}
	return out, nil
}

// MonteCarloStats counts trials that did and did not arrive.
func MonteCarloStats(results []MonteCarloResult) (arrived int, missed int) {
	for _, r := range results {
		if r.Arrived {
			arrived++
		} else {
			missed++
		}
	}
	return
}

func runTargets(ctx context.Context, reg *robot.Registry, variant, integrator string, pose dynamo.Pose, targets []dynamo.Target, maxTicks, parallel int) ([]*sim.Result, error) {
	jobs := make([]sim.Job, len(targets))
	for i, t := range targets {
		r, err := sim.BuildRobot(reg, sim.SessionConfig{
			Variant:    variant,
			Integrator: integrator,
			Pose:       pose,
			Target:     t,
		})
		if err != nil {
			return nil, err
		}
		jobs[i] = sim.Job{
			Name:    fmt.Sprintf("(%d, %d)", t.X, t.Y),
			Robot:   r,
			Metrics: metrics.All(r.Limits()),
			Config:  sim.RunConfig{MaxTicks: maxTicks, StopOnArrival: true},
		}
	}
	return sim.RunBatch(ctx, jobs, parallel)
}
