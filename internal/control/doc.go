// Package control provides the steering law and the reachability predicate.
//
// Both are pure functions of the current pose and target:
//
//   - [Steering]: turns at full rate toward the target, drives at full speed
//   - [Reachability]: detects targets inside the minimum turning circles
//
// # Usage
//
//	steer := control.NewSteering(limits, control.PolarityBlocked)
//	cmd := steer.Compute(pose, target)
//	// cmd is then handed to the integrator
//
// The steering law zeroes its angular command whenever the predicate reports
// the target blocked, so the robot drives straight out of the circle instead
// of orbiting the target.
package control
