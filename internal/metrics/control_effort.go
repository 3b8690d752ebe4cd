package metrics

import (
	"math"

	"github.com/san-kum/robonav/internal/dynamo"
)

// ControlEffort is the mean |w| over all observed ticks, as a fraction of
// the robot's maximum angular velocity.
type ControlEffort struct {
	name    string
	wmax    float64
	sum     float64
	samples int
}

func NewControlEffort(limits dynamo.Limits) *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
		wmax: limits.MaxAngularVelocity,
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(prev, next dynamo.Pose, cmd dynamo.Command, target dynamo.Target) {
	c.sum += math.Abs(cmd.AngularVelocity)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 || c.wmax == 0 {
		return 0
	}
	return c.sum / float64(c.samples) / c.wmax
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// TurnRatio is the fraction of ticks that commanded a nonzero turn.
type TurnRatio struct {
	name    string
	turning int
	samples int
}

func NewTurnRatio() *TurnRatio {
	return &TurnRatio{name: "turn_ratio"}
}

func (t *TurnRatio) Name() string { return t.name }

func (t *TurnRatio) Observe(prev, next dynamo.Pose, cmd dynamo.Command, target dynamo.Target) {
	if cmd.AngularVelocity != 0 {
		t.turning++
	}
	t.samples++
}

func (t *TurnRatio) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return float64(t.turning) / float64(t.samples)
}

func (t *TurnRatio) Reset() {
	t.turning = 0
	t.samples = 0
}
