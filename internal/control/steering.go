package control

import (
	"math"

	"github.com/san-kum/robonav/internal/dynamo"
)

// Steering is a bang-bang pursuit law: full speed ahead, full turn rate
// toward the target bearing.
type Steering struct {
	Limits   dynamo.Limits
	Polarity Polarity
	reach    Reachability
}

func NewSteering(l dynamo.Limits, p Polarity) Steering {
	return Steering{Limits: l, Polarity: p, reach: NewReachability(l)}
}

// Compute returns the command for one tick. Within ArrivalEpsilon of the
// target it returns the zero command.
//
// An angular error of exactly π (target dead astern) turns left, the same
// as errors below π. Holding the heading there would keep the bearing at π
// forever.
func (s Steering) Compute(pose dynamo.Pose, target dynamo.Target) dynamo.Command {
	if dynamo.Arrived(pose, target) {
		return dynamo.Command{}
	}

	bearing := dynamo.AngleTo(pose.X, pose.Y, float64(target.X), float64(target.Y))
	delta := dynamo.NormalizeAngle(bearing - pose.Heading)

	angular := s.Limits.MaxAngularVelocity
	if delta > math.Pi {
		angular = -s.Limits.MaxAngularVelocity
	}

	if s.Polarity.Suppresses(s.reach.Test(pose, target, s.Polarity)) {
		angular = 0
	}

	return dynamo.Command{
		Velocity:        s.Limits.MaxVelocity,
		AngularVelocity: angular,
	}
}
