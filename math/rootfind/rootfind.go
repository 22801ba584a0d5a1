/*rootfind finds zeros of scalar functions with a damped Newton iteration.

The iteration is

    x_{n+1} = x_n - gain * f(x_n) / (df(x_n) + lambda)

and stops once |f(x_n)| < tol or after a fixed number of steps. There is no
bracketing fallback, so convergence depends on f being well behaved around
the starting point. Every call does a bounded amount of work and allocates
nothing, which makes it usable inside a control loop.
*/
package rootfind

import (
	"fmt"
	"math"
)

// Func is a scalar function of one variable.
type Func func(float64) float64

// Params controls the iteration.
type Params struct {
	// Gain scales every Newton step. 1 is a plain Newton step.
	Gain float64
	// Tol is the cost magnitude below which the iteration stops.
	Tol float64
	// Lambda is added to the derivative in the step's denominator.
	Lambda float64
	// MaxIter is the largest number of steps taken.
	MaxIter int
}

// Result describes the outcome of Solve.
type Result struct {
	Root, Cost float64
	Iterations int
	// HitMaxIter is true if the iteration stopped without |Cost| < Tol.
	HitMaxIter bool
}

// Check returns an error if p cannot be used for an iteration.
func (p *Params) Check() error {
	if p.MaxIter < 0 {
		return fmt.Errorf("MaxIter must be non-negative, but is %d", p.MaxIter)
	} else if !(p.Tol > 0) {
		return fmt.Errorf("Tol must be positive, but is %g", p.Tol)
	} else if p.Gain == 0 || math.IsNaN(p.Gain) {
		return fmt.Errorf("Gain must be non-zero, but is %g", p.Gain)
	}
	return nil
}

// Solve searches for a zero of f starting from x0. df must be the derivative
// of f (or a usable approximation of it). If the tolerance is not met after
// p.MaxIter steps, the last iterate is returned with HitMaxIter set.
func Solve(x0 float64, f, df Func, p Params) Result {
	x := x0
	cost := f(x)
	for i := 0; i < p.MaxIter; i++ {
		if math.Abs(cost) < p.Tol {
			return Result{Root: x, Cost: cost, Iterations: i}
		}
		x -= p.Gain * cost / (df(x) + p.Lambda)
		cost = f(x)
	}

	// NaN costs fail this comparison and are reported as non-converged.
	converged := math.Abs(cost) < p.Tol
	return Result{
		Root: x, Cost: cost, Iterations: p.MaxIter, HitMaxIter: !converged,
	}
}

// FindZero is a convenience wrapper around Solve.
func FindZero(
	x0 float64, f, df Func, gain, tol, lambda float64, maxIter int,
) (root float64, hitMaxIter bool) {
	res := Solve(x0, f, df, Params{
		Gain: gain, Tol: tol, Lambda: lambda, MaxIter: maxIter,
	})
	return res.Root, res.HitMaxIter
}
