package sim

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/robot"
)

// stepRobot moves for a fixed number of ticks and then reports arrival.
type stepRobot struct {
	*robot.Robot
	remaining atomic.Int64
	calls     atomic.Int64
}

func (s *stepRobot) Tick() bool {
	s.calls.Add(1)
	return s.remaining.Add(-1) >= 0
}

type countingPublisher struct {
	counts [dynamo.NumEvents]atomic.Int64
}

func (c *countingPublisher) Publish(e dynamo.Event) {
	c.counts[e].Add(1)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSchedulerPublishesOnlyOnMove(t *testing.T) {
	r := &stepRobot{Robot: newStandard(t)}
	r.remaining.Store(5)
	pub := &countingPublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := Start(ctx, r, pub, time.Millisecond, nil)

	waitFor(t, func() bool { return r.calls.Load() >= 20 })

	if got := pub.counts[dynamo.EventPoseChanged].Load(); got != 5 {
		t.Errorf("expected 5 pose events, got %d", got)
	}
	if got := s.Moves(); got != 5 {
		t.Errorf("expected 5 moves, got %d", got)
	}
	if s.Ticks() < 20 {
		t.Errorf("expected at least 20 ticks, got %d", s.Ticks())
	}
	if got := pub.counts[dynamo.EventTargetChanged].Load(); got != 0 {
		t.Errorf("scheduler published %d target events", got)
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	r := newStandard(t, robot.WithTarget(dynamo.Target{X: 1000, Y: 100}))
	ctx, cancel := context.WithCancel(context.Background())
	s := Start(ctx, r, &countingPublisher{}, time.Millisecond, nil)

	waitFor(t, func() bool { return s.Moves() > 0 })
	cancel()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	pose := r.Pose()
	time.Sleep(10 * time.Millisecond)
	if r.Pose() != pose {
		t.Error("pose changed after scheduler stopped")
	}
}

func TestSchedulerDefaultPeriod(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := Start(ctx, newStandard(t), &countingPublisher{}, 0, nil)
	if s.Period() != DefaultPeriod {
		t.Errorf("expected default period, got %v", s.Period())
	}
}
