package control

import (
	"math"

	"github.com/san-kum/robonav/internal/dynamo"
)

// Polarity selects which boolean the predicate returns for a blocked target.
type Polarity int

const (
	// PolarityBlocked reports true when the target lies inside or on a
	// turning circle.
	PolarityBlocked Polarity = iota
	// PolarityClear reports true when the target lies outside both circles.
	PolarityClear
)

func (p Polarity) String() string {
	if p == PolarityClear {
		return "clear"
	}
	return "blocked"
}

// Invert returns the opposite sign convention.
func (p Polarity) Invert() Polarity {
	if p == PolarityClear {
		return PolarityBlocked
	}
	return PolarityClear
}

// Suppresses reports whether a predicate result under p means the target is
// blocked and turning must stop.
func (p Polarity) Suppresses(result bool) bool {
	if p == PolarityClear {
		return !result
	}
	return result
}

type Reachability struct {
	Limits dynamo.Limits
}

func NewReachability(l dynamo.Limits) Reachability {
	return Reachability{Limits: l}
}

// Blocked reports whether the target is inside or on either minimum-radius
// turning circle of the pose.
func (r Reachability) Blocked(pose dynamo.Pose, target dynamo.Target) bool {
	dx := float64(target.X) - pose.X
	dy := float64(target.Y) - pose.Y

	sin, cos := math.Sincos(pose.Heading)
	localX := cos*dx + sin*dy
	localY := cos*dy - sin*dx

	radius := r.Limits.TurningRadius()
	left := dynamo.Distance(localX, localY, 0, radius)
	right := dynamo.Distance(localX, localY, 0, -radius)

	return left <= radius || right <= radius
}

// Test evaluates the predicate under the caller's sign convention.
func (r Reachability) Test(pose dynamo.Pose, target dynamo.Target, p Polarity) bool {
	blocked := r.Blocked(pose, target)
	if p == PolarityClear {
		return !blocked
	}
	return blocked
}
