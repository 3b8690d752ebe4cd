package dynamo

import "fmt"

const (
	// ArrivalEpsilon is the distance below which the robot holds position.
	ArrivalEpsilon = 0.5
	// DefaultDuration is the integration duration of one tick.
	DefaultDuration = 10.0
)

type Pose struct {
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Heading float64 `json:"heading" yaml:"heading"`
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.4f rad)", p.X, p.Y, p.Heading)
}

// DistanceTo returns the euclidean distance from the pose to t.
func (p Pose) DistanceTo(t Target) float64 {
	return Distance(p.X, p.Y, float64(t.X), float64(t.Y))
}

type Target struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

type Command struct {
	Velocity        float64
	AngularVelocity float64
}

func (c Command) IsZero() bool {
	return c.Velocity == 0 && c.AngularVelocity == 0
}

type Limits struct {
	MaxVelocity        float64 `yaml:"max_velocity"`
	MaxAngularVelocity float64 `yaml:"max_angular_velocity"`
}

// Clamp bounds velocity to [0, MaxVelocity] and angular velocity to
// [-MaxAngularVelocity, MaxAngularVelocity].
func (l Limits) Clamp(c Command) Command {
	return Command{
		Velocity:        clamp(c.Velocity, 0, l.MaxVelocity),
		AngularVelocity: clamp(c.AngularVelocity, -l.MaxAngularVelocity, l.MaxAngularVelocity),
	}
}

// TurningRadius is the radius of the arc driven at full velocity and full
// angular velocity.
func (l Limits) TurningRadius() float64 {
	return l.MaxVelocity / l.MaxAngularVelocity
}

func (l Limits) Validate() error {
	if l.MaxVelocity <= 0 || l.MaxAngularVelocity <= 0 {
		return fmt.Errorf("%w: limits must be positive, got v=%g w=%g", ErrInvalidConfig, l.MaxVelocity, l.MaxAngularVelocity)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Robot is the navigation contract consumed by the scheduler and the views.
type Robot interface {
	Name() string
	Limits() Limits

	// SetTarget may be called from any goroutine at any time.
	SetTarget(x, y int)
	Target() Target

	// Tick advances the pose by one step and reports whether it moved.
	// Only the scheduler calls Tick.
	Tick() bool

	// Pose returns a snapshot taken from a single completed tick.
	Pose() Pose
	PositionX() float64
	PositionY() float64
	Heading() float64
	// Command returns the command applied by the last moving tick.
	Command() Command
}

// Integrator advances a pose by one tick. Implementations clamp the
// command to their own limits.
type Integrator interface {
	Step(pose Pose, cmd Command, duration float64) Pose
}

type Event uint8

const (
	EventPoseChanged Event = iota
	EventTargetChanged
	EventRobotReplaced

	numEvents
)

// NumEvents is the number of distinct event kinds.
const NumEvents = int(numEvents)

func (e Event) String() string {
	switch e {
	case EventPoseChanged:
		return "pose changed"
	case EventTargetChanged:
		return "target changed"
	case EventRobotReplaced:
		return "robot replaced"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

type Handler func(Event)

type Metric interface {
	Name() string
	Observe(prev, next Pose, cmd Command, target Target)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(tick int, pose Pose, cmd Command)
}
