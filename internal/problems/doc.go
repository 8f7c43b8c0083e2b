// Package problems provides initial-value problems used to exercise and
// compare integration schemes.
//
// Every problem implements [Problem]: a [dynamo.RHS] with a name, an
// initial state and a default time span. Split problems additionally
// implement [dynamo.Additive] for IMEX schemes; problems with a known
// solution implement [Exact].
//
// Available problems:
//
//   - [Arenstorf]: restricted three-body orbit, periodic
//   - [DecayChain]: linear radioactive decay chain, conserves Σy
//   - [Exponential]: y' = −λy with a tunable stiffness λ
//   - [Oscillator]: harmonic oscillator
//   - [Lorenz]: chaotic attractor
//   - [ProtheroRobinson]: split stiff test problem with solution sin t
//   - [VanDerPol]: split relaxation oscillator
//   - [Brusselator]: split chemical oscillator
package problems
