// Package dynamo provides the core primitives shared by the integrator.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing the solution at one time
//   - [RHS]: interface for a vector field dy/dt = f(t, y)
//   - [Additive]: vector field split as f = f1 + f2 (non-stiff + stiff)
//   - [Split]: function-backed [Additive] with a derived combined field
//   - [StageValues]: per-step stage derivatives, single or paired
//
// # Example
//
//	rhs := problems.NewArenstorf()
//	scheme := tableau.DormandPrince54()
//	eng, _ := solver.New(rhs, scheme)
//	res, _ := eng.Integrate(ctx, 0, rhs.Period(), rhs.Initial())
//
// # Thread Safety
//
// RHS implementations are called from a single goroutine per engine.
// Implementations that are shared between engines (for example in an
// order sweep) must not keep mutable scratch space.
package dynamo
