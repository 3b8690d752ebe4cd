package integrators

import (
	"math"

	"github.com/san-kum/robonav/internal/dynamo"
)

// Euler moves along the starting heading for the whole tick and then turns.
// Cheaper than the arc and drifts outward on long turns.
type Euler struct {
	Limits dynamo.Limits
}

func NewEuler(l dynamo.Limits) *Euler {
	return &Euler{Limits: l}
}

func (e *Euler) Step(pose dynamo.Pose, cmd dynamo.Command, duration float64) dynamo.Pose {
	cmd = e.Limits.Clamp(cmd)
	sin, cos := math.Sincos(pose.Heading)
	return dynamo.Pose{
		X:       pose.X + cmd.Velocity*duration*cos,
		Y:       pose.Y + cmd.Velocity*duration*sin,
		Heading: dynamo.NormalizeAngle(pose.Heading + cmd.AngularVelocity*duration),
	}
}
