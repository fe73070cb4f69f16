// Package dynamo provides the core simulation primitives shared by every
// animation.
//
//   - [Vec]: 2D vector (gonum r2)
//   - [Body]: simulated disk or point with position, velocity, mass, charge
//   - [Source]: fixed point source (charge, magnet pole, emitter)
//   - [Scene]: one animation kind, advanced frame by frame
//   - [Snapshot]: immutable per-frame copy of a scene for rendering
//   - [Stats]: derived scalars for display
//
// # Example
//
//	vp := dynamo.NewViewport(800, 600)
//	scene := physics.NewCollisions(vp, 42)
//	for i := 0; i < 60; i++ {
//	    scene.Update(16.67)
//	}
//	snap := scene.Snapshot()
//
// # Thread Safety
//
// Scenes are NOT thread-safe. A single driver calls Update and then reads
// Snapshot and Stats. Snapshots are deep copies and may be handed to other
// goroutines freely.
package dynamo
