// Package viz renders the live arena in the terminal.
//
// [App] is a Bubble Tea model drawing the robot, its trail and the target on
// a Braille [Canvas], with a coordinate readout, a distance graph and a pane
// showing the most recent log entries. It holds no simulation state of its
// own: every notification from the session makes it pull a fresh pose.
//
// # Key Bindings
//
//	click - Move the target to the clicked point
//	v     - Replace the robot with the next variant
//	c     - Clear the trail
//	q     - Quit
package viz
