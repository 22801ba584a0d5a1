package limitsurface

import (
	"math"

	"github.com/slipcontrol/limitsurface/math/rootfind"
)

// LimitSurface gives the normalized torque on a limit surface as a function
// of the normalized tangential force. It is used by the minimum normal force
// solver, which predates the basis-set Model.
type LimitSurface func(ftNorm float64) float64

// LineLimitSurface approximates the limit surface by 1 - ftNorm.
func LineLimitSurface(ftNorm float64) float64 { return 1 - ftNorm }

// DLineLimitSurface is the derivative of LineLimitSurface.
func DLineLimitSurface(ftNorm float64) float64 { return -1 }

// Polynomial is a limit surface given by polynomial coefficients, highest
// degree first.
type Polynomial []float64

// Eval evaluates p at x.
func (p Polynomial) Eval(x float64) float64 {
	y := 0.0
	for _, c := range p {
		y = y*x + c
	}
	return y
}

// Deriv returns the derivative of p.
func (p Polynomial) Deriv() Polynomial {
	if len(p) <= 1 {
		return Polynomial{0}
	}
	n := len(p) - 1
	d := make(Polynomial, n)
	for i := 0; i < n; i++ {
		d[i] = p[i] * float64(n-i)
	}
	return d
}

// MinForceCost is zero at the normal force for which the measured ft and
// taun lie on the limit surface ls. Only |fn| is used. The tangential force
// is normalized by Gamma*fn and saturated at 1.
func MinForceCost(fn float64, ls LimitSurface, ft, taun float64, s *ContactShape) float64 {
	fn = math.Abs(fn)
	if fn == 0 {
		return 10
	}

	ftNorm := ft / (s.Gamma * fn)
	if ftNorm > 1 {
		ftNorm = 1
	}

	return ls(ftNorm) - (1/s.Alpha)*taun/math.Pow(fn, 1+s.Gamma)
}

// MinForceGrad is the derivative of MinForceCost with respect to fn, given
// the derivative of the limit surface, dls. It returns -1 at fn == 0.
func MinForceGrad(fn float64, dls LimitSurface, ft, taun float64, s *ContactShape) float64 {
	sgn := sign(fn)
	if sgn == 0 {
		return -1
	}
	fn = math.Abs(fn)

	torqueTerm := (1 / s.Alpha) * taun * (1 + s.Gamma) / math.Pow(fn, s.Gamma+2)
	ftNorm := ft / (s.Gamma * fn)
	if ftNorm < 1 {
		return sgn * (-dls(ftNorm)*ft/(s.Gamma*fn*fn) + torqueTerm)
	}
	return sgn * torqueTerm
}

// MinNormalForce solves MinForceCost for the normal force starting from fn0.
// The returned force is always non-negative.
func MinNormalForce(
	ls, dls LimitSurface, ft, taun float64, s *ContactShape,
	fn0 float64, p SolverParams,
) (fn float64, hitMaxIter bool) {
	res := rootfind.Solve(
		fn0,
		func(x float64) float64 { return MinForceCost(x, ls, ft, taun, s) },
		func(x float64) float64 { return MinForceGrad(x, dls, ft, taun, s) },
		p.rootfind(),
	)
	return math.Abs(res.Root), res.HitMaxIter
}
