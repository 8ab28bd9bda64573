// Package viz renders a particle world in the terminal.
//
// [Model] is a Bubble Tea program that advances an experiment every frame
// and draws it on a braille [Canvas], with a side panel of live statistics
// and a population graph.
//
// # Key Bindings
//
//	Space - Spawn a burst of particles
//	P     - Pause/Resume
//	C     - Clear all particles
//	S     - Save an SVG snapshot
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
