// Package viz renders scenes in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Canvas]: braille dot canvas, 2x4 dots per cell
//   - [Renderer]: scales a [dynamo.Snapshot] onto a canvas and keeps trails
//   - [StatsPanel]: binds stats keys to labelled lines with smoothed gauges
//   - [Live]: real-time viewer for one scene
//   - [App]: menu to pick a scene, then [Live]
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	.     - Step one frame while paused
//	R     - Reset the scene
//	+/-   - Speed multiplier
//	Tab   - Select parameter
//	↑/↓   - Adjust selected parameter
//	T     - Cycle color themes
//	Esc   - Back to the menu (App only)
package viz
