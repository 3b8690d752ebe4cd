package sim

import (
	"time"

	"github.com/san-kum/robonav/internal/dynamo"
)

const DefaultPeriod = 10 * time.Millisecond

// Publisher receives change events from the scheduler.
type Publisher interface {
	Publish(e dynamo.Event)
}

type RunConfig struct {
	MaxTicks int
	// StopOnArrival ends the run at the first tick the robot does not move.
	StopOnArrival bool
}

type Result struct {
	Poses       []dynamo.Pose
	Commands    []dynamo.Command
	Ticks       int
	Arrived     bool
	ArrivalTick int
	Metrics     map[string]float64
}

func (r *Result) FinalPose() dynamo.Pose {
	if len(r.Poses) == 0 {
		return dynamo.Pose{}
	}
	return r.Poses[len(r.Poses)-1]
}
