// Package analysis post-processes recorded stats and compares runs.
//
//   - [PowerSpectrum], [DominantFrequency]: FFT of a stat series
//   - [Crossings], [MeanPeriod]: period from threshold crossings
//   - [PhasePortrait]: one stat against another, as text
//   - [Divergence]: growth rate of the separation of two nearby runs
//   - [Sweep]: a stat summarised across a parameter range
//
// # Chaos Detection
//
// A clearly positive divergence exponent indicates chaotic motion:
//
//	a := physics.NewPendulum(nil, 1)
//	b := physics.NewPendulum(nil, 1)
//	a.SetParam("mode", physics.PendulumDouble)
//	b.SetParam("mode", physics.PendulumDouble)
//	a.SetParam("amplitude", 170)
//	b.SetParam("amplitude", 170.001)
//	est := analysis.Divergence(a, b, 600, 16, 50)
package analysis
