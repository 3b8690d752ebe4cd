package integrators

import (
	"math"

	"github.com/san-kum/robonav/internal/dynamo"
)

// Unicycle integrates the exact circular arc driven under a constant
// command.
type Unicycle struct {
	Limits dynamo.Limits
}

func NewUnicycle(l dynamo.Limits) *Unicycle {
	return &Unicycle{Limits: l}
}

func (u *Unicycle) Step(pose dynamo.Pose, cmd dynamo.Command, duration float64) dynamo.Pose {
	cmd = u.Limits.Clamp(cmd)
	v, w := cmd.Velocity, cmd.AngularVelocity

	heading := pose.Heading + w*duration
	if w == 0 {
		return straight(pose, v, duration)
	}

	radius := v / w
	x := pose.X + radius*(math.Sin(heading)-math.Sin(pose.Heading))
	y := pose.Y - radius*(math.Cos(heading)-math.Cos(pose.Heading))

	// only reachable with subnormal w, where v/w overflows
	if !isFinite(x) || !isFinite(y) {
		next := straight(pose, v, duration)
		next.Heading = dynamo.NormalizeAngle(heading)
		return next
	}

	return dynamo.Pose{X: x, Y: y, Heading: dynamo.NormalizeAngle(heading)}
}

func straight(pose dynamo.Pose, v, duration float64) dynamo.Pose {
	sin, cos := math.Sincos(pose.Heading)
	return dynamo.Pose{
		X:       pose.X + v*duration*cos,
		Y:       pose.Y + v*duration*sin,
		Heading: dynamo.NormalizeAngle(pose.Heading),
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
