package sim

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/san-kum/robonav/internal/dynamo"
	"go.uber.org/zap"
)

// Scheduler ticks one robot at a fixed period from its own goroutine. It
// starts running as soon as it is created and stops only when the context
// passed to Start is cancelled.
type Scheduler struct {
	robot  dynamo.Robot
	pub    Publisher
	period time.Duration
	logger *zap.Logger

	ticks atomic.Uint64
	moves atomic.Uint64
	done  chan struct{}
}

func Start(ctx context.Context, r dynamo.Robot, pub Publisher, period time.Duration, logger *zap.Logger) *Scheduler {
	if period <= 0 {
		period = DefaultPeriod
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		robot:  r,
		pub:    pub,
		period: period,
		logger: logger.With(zap.String("robot", r.Name())),
		done:   make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.logger.Debug("scheduler started", zap.Duration("period", s.period))
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped",
				zap.Uint64("ticks", s.ticks.Load()),
				zap.Uint64("moves", s.moves.Load()))
			return
		case <-ticker.C:
			s.ticks.Add(1)
			if s.robot.Tick() {
				s.moves.Add(1)
				s.pub.Publish(dynamo.EventPoseChanged)
			}
		}
	}
}

// Done is closed once the scheduler goroutine has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Ticks counts timer firings.
func (s *Scheduler) Ticks() uint64 { return s.ticks.Load() }

// Moves counts ticks that changed the pose.
func (s *Scheduler) Moves() uint64 { return s.moves.Load() }

func (s *Scheduler) Period() time.Duration { return s.period }
