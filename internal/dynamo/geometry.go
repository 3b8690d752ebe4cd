package dynamo

import "math"

const twoPi = 2 * math.Pi

// NormalizeAngle maps any finite angle into [0, 2π). Non-finite input
// yields 0.
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	// a tiny negative remainder rounds up to exactly 2π
	if a >= twoPi {
		a = 0
	}
	return a
}

func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}

// AngleTo returns the bearing from one point to another in [0, 2π).
func AngleTo(fromX, fromY, toX, toY float64) float64 {
	return NormalizeAngle(math.Atan2(toY-fromY, toX-fromX))
}

func Arrived(p Pose, t Target) bool {
	return p.DistanceTo(t) < ArrivalEpsilon
}
