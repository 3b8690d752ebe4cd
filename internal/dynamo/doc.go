// Package dynamo provides the core types of the navigation engine.
//
// The package defines the vocabulary shared by every other package:
//
//   - [Pose]: robot position and heading, heading kept in [0, 2π)
//   - [Target]: the integer destination the robot steers toward
//   - [Command]: linear and angular velocity produced each tick
//   - [Limits]: velocity bounds every command is clamped to
//   - [Robot]: the navigation contract driven by the scheduler
//   - [Event]: tags delivered to observers after state changes
//
// # Example
//
//	r, _ := robot.DefaultRegistry().New("standard")
//	r.SetTarget(150, 100)
//	for r.Tick() {
//	}
//	fmt.Println(r.Pose())
//
// # Thread Safety
//
// Pose, Target, Command and Limits are plain values. Robot implementations
// must allow SetTarget and the pose accessors from any goroutine while a
// single scheduler goroutine calls Tick.
package dynamo
