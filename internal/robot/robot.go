package robot

import (
	"sync/atomic"

	"github.com/san-kum/robonav/internal/control"
	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/integrators"
)

var _ dynamo.Robot = (*Robot)(nil)

var (
	DefaultPose   = dynamo.Pose{X: 100, Y: 100, Heading: 0}
	DefaultTarget = dynamo.Target{X: 150, Y: 100}
)

// frame is the immutable result of one completed tick.
type frame struct {
	pose dynamo.Pose
	cmd  dynamo.Command
}

// Robot is a point mass steering straight for its target. The pose and
// target are published through atomic pointers to immutable values, so
// readers on any goroutine always see whole snapshots.
type Robot struct {
	name       string
	limits     dynamo.Limits
	duration   float64
	steering   control.Steering
	integrator dynamo.Integrator

	frame  atomic.Pointer[frame]
	target atomic.Pointer[dynamo.Target]
}

type Option func(*Robot)

func WithPose(p dynamo.Pose) Option {
	return func(r *Robot) {
		p.Heading = dynamo.NormalizeAngle(p.Heading)
		r.frame.Store(&frame{pose: p})
	}
}

func WithTarget(t dynamo.Target) Option {
	return func(r *Robot) {
		r.target.Store(&t)
	}
}

// WithDuration sets the integration duration of a single tick.
func WithDuration(d float64) Option {
	return func(r *Robot) {
		if d > 0 {
			r.duration = d
		}
	}
}

func WithIntegrator(i dynamo.Integrator) Option {
	return func(r *Robot) {
		if i != nil {
			r.integrator = i
		}
	}
}

func New(name string, limits dynamo.Limits, polarity control.Polarity, opts ...Option) *Robot {
	r := &Robot{
		name:       name,
		limits:     limits,
		duration:   dynamo.DefaultDuration,
		steering:   control.NewSteering(limits, polarity),
		integrator: integrators.NewUnicycle(limits),
	}
	pose, target := DefaultPose, DefaultTarget
	r.frame.Store(&frame{pose: pose})
	r.target.Store(&target)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Robot) Name() string          { return r.name }
func (r *Robot) Limits() dynamo.Limits { return r.limits }

func (r *Robot) SetTarget(x, y int) {
	r.target.Store(&dynamo.Target{X: x, Y: y})
}

func (r *Robot) Target() dynamo.Target {
	return *r.target.Load()
}

// Tick runs steering and integration once. It returns false without touching
// the pose once the robot is within ArrivalEpsilon of its target.
func (r *Robot) Tick() bool {
	current := r.frame.Load()
	target := *r.target.Load()

	if dynamo.Arrived(current.pose, target) {
		return false
	}

	cmd := r.limits.Clamp(r.steering.Compute(current.pose, target))
	next := r.integrator.Step(current.pose, cmd, r.duration)

	r.frame.Store(&frame{pose: next, cmd: cmd})
	return true
}

func (r *Robot) Pose() dynamo.Pose       { return r.frame.Load().pose }
func (r *Robot) PositionX() float64      { return r.frame.Load().pose.X }
func (r *Robot) PositionY() float64      { return r.frame.Load().pose.Y }
func (r *Robot) Heading() float64        { return r.frame.Load().pose.Heading }
func (r *Robot) Command() dynamo.Command { return r.frame.Load().cmd }
