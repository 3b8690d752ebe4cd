package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/robonav/internal/dynamo"
)

// Simulator ticks a robot synchronously on the calling goroutine. It is
// used for headless runs, benchmarks and recordings.
type Simulator struct {
	robot     dynamo.Robot
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(r dynamo.Robot) *Simulator {
	return &Simulator{
		robot:     r,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Robot() dynamo.Robot { return s.robot }

func (s *Simulator) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Poses:       make([]dynamo.Pose, 0, min(cfg.MaxTicks, 1<<16)+1),
		Commands:    make([]dynamo.Command, 0, min(cfg.MaxTicks, 1<<16)),
		ArrivalTick: -1,
		Metrics:     make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	prev := s.robot.Pose()
	result.Poses = append(result.Poses, prev)

	for i := 0; i < cfg.MaxTicks; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, &dynamo.RunError{Tick: i, Pose: prev, Wrapped: ctx.Err()}
		default:
		}

		if !s.robot.Tick() {
			if !result.Arrived {
				result.Arrived = true
				result.ArrivalTick = i
			}
			if cfg.StopOnArrival {
				break
			}
			continue
		}

		next := s.robot.Pose()
		cmd := s.robot.Command()
		target := s.robot.Target()

		for _, m := range s.metrics {
			m.Observe(prev, next, cmd, target)
		}
		for _, obs := range s.observers {
			obs.OnTick(result.Ticks, next, cmd)
		}

		result.Ticks++
		result.Poses = append(result.Poses, next)
		result.Commands = append(result.Commands, cmd)
		prev = next
	}

	// the last allowed tick may be the one that arrives
	if !result.Arrived && dynamo.Arrived(prev, s.robot.Target()) {
		result.Arrived = true
		result.ArrivalTick = result.Ticks
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg RunConfig) error {
	if cfg.MaxTicks <= 0 {
		return fmt.Errorf("%w: max ticks must be positive, got %d", dynamo.ErrInvalidConfig, cfg.MaxTicks)
	}
	return nil
}
