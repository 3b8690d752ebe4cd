package metrics

import "github.com/san-kum/robonav/internal/dynamo"

// PathLength sums the straight-line distance between consecutive poses.
type PathLength struct {
	name  string
	total float64
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(prev, next dynamo.Pose, cmd dynamo.Command, target dynamo.Target) {
	p.total += dynamo.Distance(prev.X, prev.Y, next.X, next.Y)
}

func (p *PathLength) Value() float64 { return p.total }

func (p *PathLength) Reset() { p.total = 0 }

// FinalDistance is the distance to the target after the last observed tick.
type FinalDistance struct {
	name     string
	distance float64
}

func NewFinalDistance() *FinalDistance {
	return &FinalDistance{name: "final_distance"}
}

func (f *FinalDistance) Name() string { return f.name }

func (f *FinalDistance) Observe(prev, next dynamo.Pose, cmd dynamo.Command, target dynamo.Target) {
	f.distance = next.DistanceTo(target)
}

func (f *FinalDistance) Value() float64 { return f.distance }

func (f *FinalDistance) Reset() { f.distance = 0 }

// All returns one fresh instance of every metric.
func All(limits dynamo.Limits) []dynamo.Metric {
	return []dynamo.Metric{
		NewPathLength(),
		NewControlEffort(limits),
		NewTurnRatio(),
		NewFinalDistance(),
	}
}
