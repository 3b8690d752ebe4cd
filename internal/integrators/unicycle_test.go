package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/robonav/internal/dynamo"
)

var testLimits = dynamo.Limits{MaxVelocity: 0.1, MaxAngularVelocity: 0.003}

func TestUnicycleStraightLine(t *testing.T) {
	integ := NewUnicycle(testLimits)

	for _, heading := range []float64{0, 0.7, math.Pi / 2, math.Pi, 4.5} {
		start := dynamo.Pose{X: 100, Y: 100, Heading: heading}
		next := integ.Step(start, dynamo.Command{Velocity: 0.1}, 10)

		dx, dy := next.X-start.X, next.Y-start.Y
		cross := dx*math.Sin(heading) - dy*math.Cos(heading)
		dot := dx*math.Cos(heading) + dy*math.Sin(heading)

		if math.Abs(cross) > 1e-12 {
			t.Errorf("heading %.2f: motion not colinear, cross=%g", heading, cross)
		}
		if math.Abs(dot-1.0) > 1e-12 {
			t.Errorf("heading %.2f: expected 1 unit of travel, got %g", heading, dot)
		}
		if next.Heading != heading {
			t.Errorf("heading changed without angular velocity: %v -> %v", heading, next.Heading)
		}
	}
}

func TestUnicycleArc(t *testing.T) {
	integ := NewUnicycle(testLimits)
	start := dynamo.Pose{X: 100, Y: 100, Heading: 0}

	next := integ.Step(start, dynamo.Command{Velocity: 0.1, AngularVelocity: 0.003}, 10)

	radius := 0.1 / 0.003
	expectedX := 100 + radius*math.Sin(0.03)
	expectedY := 100 - radius*(math.Cos(0.03)-1)

	if math.Abs(next.X-expectedX) > 1e-9 || math.Abs(next.Y-expectedY) > 1e-9 {
		t.Errorf("arc end = (%.9f, %.9f), want (%.9f, %.9f)", next.X, next.Y, expectedX, expectedY)
	}
	if math.Abs(next.Heading-0.03) > 1e-12 {
		t.Errorf("heading = %v, want 0.03", next.Heading)
	}

	// arc motion must leave the straight line
	if math.Abs(next.Y-start.Y) < 1e-6 {
		t.Error("nonzero angular velocity produced colinear motion")
	}

	chord := dynamo.Distance(start.X, start.Y, next.X, next.Y)
	expectedChord := 2 * radius * math.Sin(0.015)
	if math.Abs(chord-expectedChord) > 1e-9 {
		t.Errorf("chord = %v, want %v", chord, expectedChord)
	}
}

func TestUnicycleClampsCommand(t *testing.T) {
	integ := NewUnicycle(testLimits)
	start := dynamo.Pose{X: 0, Y: 0, Heading: 0}

	tests := []struct {
		name     string
		cmd      dynamo.Command
		expected dynamo.Pose
	}{
		{"velocity above max", dynamo.Command{Velocity: 50}, dynamo.Pose{X: 1}},
		{"negative velocity", dynamo.Command{Velocity: -3}, dynamo.Pose{}},
		{"angular above max", dynamo.Command{AngularVelocity: 1}, dynamo.Pose{Heading: 0.03}},
		{"angular below min", dynamo.Command{AngularVelocity: -1}, dynamo.Pose{Heading: 2*math.Pi - 0.03}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := integ.Step(start, tt.cmd, 10)
			if math.Abs(got.X-tt.expected.X) > 1e-9 ||
				math.Abs(got.Y-tt.expected.Y) > 1e-9 ||
				math.Abs(got.Heading-tt.expected.Heading) > 1e-9 {
				t.Errorf("Step(%+v) = %+v, want %+v", tt.cmd, got, tt.expected)
			}
		})
	}
}

func TestUnicycleHeadingNormalized(t *testing.T) {
	integ := NewUnicycle(dynamo.Limits{MaxVelocity: 0.5, MaxAngularVelocity: 0.1})

	tests := []struct {
		name    string
		heading float64
		w       float64
		dur     float64
	}{
		{"wrap past 2π", 6.2, 0.1, 10},
		{"wrap below 0", 0.1, -0.1, 10},
		{"several turns forward", 1.0, 0.1, 200},
		{"several turns backward", 1.0, -0.1, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := integ.Step(dynamo.Pose{Heading: tt.heading}, dynamo.Command{Velocity: 0.5, AngularVelocity: tt.w}, tt.dur)
			if got.Heading < 0 || got.Heading >= 2*math.Pi {
				t.Errorf("heading %v outside [0, 2π)", got.Heading)
			}
			want := dynamo.NormalizeAngle(tt.heading + tt.w*tt.dur)
			if math.Abs(got.Heading-want) > 1e-9 {
				t.Errorf("heading = %v, want %v", got.Heading, want)
			}
		})
	}
}

func TestEulerMatchesArcForSmallTurns(t *testing.T) {
	arc := NewUnicycle(testLimits)
	euler := NewEuler(testLimits)
	cmd := dynamo.Command{Velocity: 0.1, AngularVelocity: 0.003}

	a, e := dynamo.Pose{X: 10, Y: 10}, dynamo.Pose{X: 10, Y: 10}
	for i := 0; i < 10; i++ {
		a = arc.Step(a, cmd, 10)
		e = euler.Step(e, cmd, 10)
	}

	if d := dynamo.Distance(a.X, a.Y, e.X, e.Y); d > 0.2 {
		t.Errorf("euler drifted %.4f from arc after 10 ticks", d)
	}
	if math.Abs(a.Heading-e.Heading) > 1e-12 {
		t.Errorf("headings differ: %v vs %v", a.Heading, e.Heading)
	}
}

func TestRegistry(t *testing.T) {
	integ, err := New("", testLimits)
	if err != nil {
		t.Fatalf("default integrator: %v", err)
	}
	if _, ok := integ.(*Unicycle); !ok {
		t.Errorf("default integrator is %T, want *Unicycle", integ)
	}

	if _, err := New("rk4", testLimits); err == nil {
		t.Error("expected error for unknown integrator")
	}

	names := Names()
	if len(names) != 2 || names[0] != "arc" || names[1] != "euler" {
		t.Errorf("Names() = %v", names)
	}
}
