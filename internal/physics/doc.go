// Package physics provides the teaching scenes.
//
// Each scene implements [dynamo.Scene]: it owns its bodies and sources,
// advances them with [integrators.SemiImplicitEuler] on Update, and exposes
// read-only [dynamo.Snapshot] values and [dynamo.Stats] for rendering.
//
//   - [Pendulum]: simple or double pendulum with energy and period
//   - [Orbits]: planets around a fixed star, Barnes-Hut gravity
//   - [Collisions]: disks in a box, elastic/inelastic/mixed restitution
//   - [Friction]: block on an incline with static and kinetic friction
//   - [Electric]: test charges in the field of point charges
//   - [Magnetic]: cyclotron motion and iron filings around a bar magnet
//   - [Fluid]: pipe flow, laminar to turbulent by Reynolds number
//   - [Brownian]: heavy particle kicked by light molecules
//   - [Diffusion]: two species mixing, optional partition
//   - [GasLaws]: piston box for Boyle, Charles and Gay-Lussac
//   - [Waves]: sound, wave packet and plucked string
//
// All randomness comes from a seed given at construction. Reset rebuilds
// the random source from that seed, so two resets in a row produce the same
// state:
//
//	s := physics.NewCollisions(dynamo.NewViewport(800, 600), 42)
//	s.Update(16)
//	s.Reset()
//	snap := s.Snapshot()
package physics
