package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/robonav/internal/dynamo"
)

var limits = dynamo.Limits{MaxVelocity: 0.1, MaxAngularVelocity: 0.003}

func TestPathLength(t *testing.T) {
	m := NewPathLength()
	a := dynamo.Pose{X: 0, Y: 0}
	b := dynamo.Pose{X: 3, Y: 4}
	c := dynamo.Pose{X: 3, Y: 5}

	m.Observe(a, b, dynamo.Command{}, dynamo.Target{})
	m.Observe(b, c, dynamo.Command{}, dynamo.Target{})

	if got := m.Value(); math.Abs(got-6) > 1e-12 {
		t.Errorf("expected 6, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort(limits)
	if m.Value() != 0 {
		t.Error("expected zero with no samples")
	}

	p := dynamo.Pose{}
	m.Observe(p, p, dynamo.Command{AngularVelocity: 0.003}, dynamo.Target{})
	m.Observe(p, p, dynamo.Command{AngularVelocity: -0.003}, dynamo.Target{})
	m.Observe(p, p, dynamo.Command{AngularVelocity: 0}, dynamo.Target{})
	m.Observe(p, p, dynamo.Command{AngularVelocity: 0}, dynamo.Target{})

	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestTurnRatio(t *testing.T) {
	m := NewTurnRatio()
	p := dynamo.Pose{}
	cmds := []float64{0.1, 0, 0, -0.1, 0}
	for _, w := range cmds {
		m.Observe(p, p, dynamo.Command{AngularVelocity: w}, dynamo.Target{})
	}
	if got := m.Value(); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("expected 0.4, got %f", got)
	}
}

func TestFinalDistance(t *testing.T) {
	m := NewFinalDistance()
	target := dynamo.Target{X: 10, Y: 0}

	m.Observe(dynamo.Pose{}, dynamo.Pose{X: 2}, dynamo.Command{}, target)
	m.Observe(dynamo.Pose{X: 2}, dynamo.Pose{X: 7}, dynamo.Command{}, target)

	if got := m.Value(); math.Abs(got-3) > 1e-12 {
		t.Errorf("expected 3, got %f", got)
	}
}

func TestAllNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range All(limits) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 metrics, got %d", len(seen))
	}
}
