package limitsurface

import (
	"fmt"
	"math"

	"github.com/slipcontrol/limitsurface/math/rootfind"
)

const (
	// IndeterminateForce is returned by NormalForce when neither the
	// tangential force nor the torque is active enough to give an estimate.
	// It is a sentinel, not a measured force.
	IndeterminateForce = 0.0

	// activityThreshold is the normalized force/torque below which that
	// quantity is not used to recover the normal force.
	activityThreshold = 0.1
)

// SolverParams controls the contact ratio solve.
type SolverParams struct {
	// MaxSigma bounds |sigma|. Values outside [-|MaxSigma|, |MaxSigma|],
	// including infinities from a vanishing torque, are clamped.
	MaxSigma float64
	Gain     float64
	CostTol  float64
	Lambda   float64
	MaxIter  int
}

// DefaultSolverParams returns the parameters used when none are configured.
func DefaultSolverParams() SolverParams {
	return SolverParams{
		MaxSigma: 5, Gain: 1, CostTol: 1e-8, Lambda: 1e-9, MaxIter: 100,
	}
}

func (p SolverParams) rootfind() rootfind.Params {
	return rootfind.Params{
		Gain: p.Gain, Tol: p.CostTol, Lambda: p.Lambda, MaxIter: p.MaxIter,
	}
}

// Check returns an error if p cannot be used for a solve.
func (p SolverParams) Check() error {
	if !(p.MaxSigma > 0) {
		return fmt.Errorf("MaxSigma must be positive, but is %g", p.MaxSigma)
	} else if !(p.Lambda >= 0) {
		return fmt.Errorf("Lambda must be non-negative, but is %g", p.Lambda)
	}
	rp := p.rootfind()
	return rp.Check()
}

// ClampSigma limits sigma to [-|maxSigma|, |maxSigma|].
func ClampSigma(sigma, maxSigma float64) float64 {
	bound := math.Abs(maxSigma)
	if sigma > bound {
		return bound
	} else if sigma < -bound {
		return -bound
	}
	return sigma
}

// ContactRatioCost returns the function whose zero is the contact ratio that
// reproduces sigma.
func ContactRatioCost(
	sigma, gamma float64, ft *SigmoidBasis, taun *GaussianBasis,
) rootfind.Func {
	return func(c float64) float64 {
		return sigma - SignedPow(ft.FtTilde(c), gamma+1)/taun.TaunTilde(c)
	}
}

// ContactRatioGrad returns the derivative of ContactRatioCost with respect to
// the contact ratio. The tangential term uses DSignedPow as is.
func ContactRatioGrad(
	gamma float64, ft *SigmoidBasis, taun *GaussianBasis,
) rootfind.Func {
	return func(c float64) float64 {
		f, df := ft.FtTilde(c), ft.DFtTilde(c)
		t, dt := taun.TaunTilde(c), taun.DTaunTilde(c)

		num := DSignedPow(f, gamma+1)*df*t - SignedPow(f, gamma+1)*dt
		return -num / (t * t)
	}
}

// ContactRatio solves for the contact ratio c_tilde whose limit-surface point
// has the ratio sigma. initial is the starting point of the search; zero is
// replaced by one. The second return value is true if the solver stopped
// without meeting p.CostTol, in which case the last iterate is returned.
func ContactRatio(
	sigma, gamma, initial float64,
	ft *SigmoidBasis, taun *GaussianBasis, p SolverParams,
) (c float64, hitMaxIter bool) {
	sigma = ClampSigma(sigma, p.MaxSigma)
	if initial == 0 {
		initial = 1
	}

	res := rootfind.Solve(
		initial,
		ContactRatioCost(sigma, gamma, ft, taun),
		ContactRatioGrad(gamma, ft, taun),
		p.rootfind(),
	)
	return res.Root, res.HitMaxIter
}

// ContactRatio is identical to the package-level ContactRatio, but uses the
// basis sets of m.
func (m *Model) ContactRatio(
	sigma, gamma, initial float64, p SolverParams,
) (c float64, hitMaxIter bool) {
	return ContactRatio(sigma, gamma, initial, m.Ft, m.Taun, p)
}

// NormalForce recovers the normal force from a measured tangential force and
// torque and their normalized limit-surface values. If neither normalized
// value exceeds the activity threshold, IndeterminateForce is returned.
func NormalForce(ft, taun, ftTilde, taunTilde float64, s *ContactShape) float64 {
	if math.Abs(ftTilde) > activityThreshold {
		return (ft / s.Mu) / math.Abs(ftTilde)
	} else if taunTilde > activityThreshold {
		norm := taun / (2 * s.Mu * s.XikNuk * s.Delta)
		return math.Pow(norm/taunTilde, 1/(s.Gamma+1))
	}
	return IndeterminateForce
}

// IsIndeterminate returns true if fn is the sentinel returned by NormalForce
// when no estimate could be made.
func IsIndeterminate(fn float64) bool { return fn == IndeterminateForce }
