package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/integrators"
	"github.com/san-kum/robonav/internal/notify"
	"github.com/san-kum/robonav/internal/robot"
	"go.uber.org/zap"
)

var ErrSessionClosed = errors.New("robonav: session closed")

type SessionConfig struct {
	Variant    string
	Period     time.Duration
	Duration   float64
	Integrator string
	Pose       dynamo.Pose
	Target     dynamo.Target
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Variant:  "standard",
		Period:   DefaultPeriod,
		Duration: dynamo.DefaultDuration,
		Pose:     robot.DefaultPose,
		Target:   robot.DefaultTarget,
	}
}

// Session owns the live robot, the scheduler driving it and the notifier
// its views subscribe to. Replacing the robot keeps every subscription.
type Session struct {
	mu       sync.Mutex
	registry *robot.Registry
	notifier *notify.Notifier
	cfg      SessionConfig
	logger   *zap.Logger

	parent  context.Context
	variant string
	robot   *robot.Robot
	sched   *Scheduler
	cancel  context.CancelFunc
	closed  bool
}

func NewSession(ctx context.Context, reg *robot.Registry, cfg SessionConfig, logger *zap.Logger) (*Session, error) {
	if reg == nil {
		reg = robot.DefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		registry: reg,
		notifier: notify.New(logger),
		cfg:      cfg,
		logger:   logger,
		parent:   ctx,
	}

	r, err := s.build(cfg.Variant, cfg.Target)
	if err != nil {
		return nil, err
	}
	s.start(cfg.Variant, r)
	logger.Info("session started",
		zap.String("robot", cfg.Variant),
		zap.Stringer("pose", r.Pose()),
		zap.Int("target_x", cfg.Target.X),
		zap.Int("target_y", cfg.Target.Y))
	return s, nil
}

func (s *Session) build(variant string, target dynamo.Target) (*robot.Robot, error) {
	cfg := s.cfg
	cfg.Variant = variant
	cfg.Target = target
	return BuildRobot(s.registry, cfg)
}

// BuildRobot constructs a robot of cfg.Variant at cfg.Pose heading for
// cfg.Target, using the named integrator.
func BuildRobot(reg *robot.Registry, cfg SessionConfig) (*robot.Robot, error) {
	if reg == nil {
		reg = robot.DefaultRegistry()
	}
	v, err := reg.Get(cfg.Variant)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Integrator, v.Limits)
	if err != nil {
		return nil, fmt.Errorf("robot %s: %w", cfg.Variant, err)
	}
	return reg.New(cfg.Variant,
		robot.WithPose(cfg.Pose),
		robot.WithTarget(cfg.Target),
		robot.WithDuration(cfg.Duration),
		robot.WithIntegrator(integ),
	)
}

func (s *Session) start(variant string, r *robot.Robot) {
	ctx, cancel := context.WithCancel(s.parent)
	s.variant = variant
	s.robot = r
	s.cancel = cancel
	s.sched = Start(ctx, r, s.notifier, s.cfg.Period, s.logger)
}

// SetTarget retargets the current robot.
func (s *Session) SetTarget(x, y int) {
	// under the lock so a concurrent Replace carries this target over
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.robot.SetTarget(x, y)
	s.mu.Unlock()

	s.logger.Info("target changed", zap.Int("x", x), zap.Int("y", y))
	s.notifier.Publish(dynamo.EventTargetChanged)
}

// Replace discards the current robot and starts a fresh one of the named
// variant at the configured initial pose, heading for the current target.
func (s *Session) Replace(variant string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	r, err := s.build(variant, s.robot.Target())
	if err != nil {
		s.mu.Unlock()
		return err
	}

	oldCancel, oldSched := s.cancel, s.sched
	s.start(variant, r)
	s.mu.Unlock()

	oldCancel()
	<-oldSched.Done()

	s.logger.Info("robot replaced", zap.String("robot", variant))
	s.notifier.Publish(dynamo.EventRobotReplaced)
	return nil
}

// Robot returns the current robot. Callers must fetch it again after a
// EventRobotReplaced notification.
func (s *Session) Robot() dynamo.Robot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.robot
}

func (s *Session) Variant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variant
}

func (s *Session) Scheduler() *Scheduler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched
}

func (s *Session) Subscribe(h dynamo.Handler) *notify.Subscription {
	return s.notifier.Subscribe(h)
}

func (s *Session) Registry() *robot.Registry { return s.registry }

// Close stops the scheduler and drops every subscription.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel, sched := s.cancel, s.sched
	s.mu.Unlock()

	cancel()
	<-sched.Done()
	s.notifier.Close()
	s.logger.Info("session closed")
}
