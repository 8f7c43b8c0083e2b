// Package solver integrates ODE initial-value problems with an explicit,
// diagonally implicit or additive Runge-Kutta scheme.
//
// One call to [Engine.Integrate] repeats four phases until tEnd:
//
//   - Propose: clip the step size to MaxStep and to the remaining span
//   - Solve: compute the stage derivatives, running a Newton iteration
//     for every diagonally implicit stage
//   - Estimate: form the candidate and, with embedded weights, the
//     scaled error norm
//   - Decide: accept or reject, adapt the step size, publish the step
//
// Accepted steps are published to the registered [Module]s in
// registration order through a fresh [props.Holder]. Rejections caused by
// the error test, a failed Newton iteration or non-finite values are
// retried with a smaller step until Config.MaxRejects consecutive
// rejections, which ends the run with [dynamo.ErrRetryBudget].
//
// # Example
//
//	rk, _ := tableau.Lookup("kc43")
//	eng, err := solver.New(problem, rk, solver.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	y1, err := eng.Integrate(ctx, 0, 10, y0)
//
// # Thread Safety
//
// An Engine is single-threaded and must not be shared between goroutines
// while integrating. Modules must not retain a Holder after Step returns.
package solver
