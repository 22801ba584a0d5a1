package limitsurface

import (
	"math"

	"github.com/pkg/errors"
)

// RadiusEstimator is an external model which maps contact features to the
// effective radius of the contact's centre of rotation.
type RadiusEstimator interface {
	Radius(features []float64) float64
}

// RadiusFunc adapts a plain function to the RadiusEstimator interface.
type RadiusFunc func(features []float64) float64

func (f RadiusFunc) Radius(features []float64) float64 { return f(features) }

// Estimator bundles everything needed to turn one tangential force/torque
// measurement into a normal force estimate. An Estimator is never modified
// after construction and may be shared between goroutines as long as its
// RadiusEstimator can be.
type Estimator struct {
	Shape  *ContactShape
	Model  *Model
	Solver SolverParams
	COR    RadiusEstimator
}

// Estimate is the result of a single Estimator.Estimate call.
type Estimate struct {
	Sigma, CTilde      float64
	FtTilde, TaunTilde float64
	// Fn is IndeterminateForce when Indeterminate is set. It takes the sign
	// of the tangential force, while the limits below use its magnitude.
	Fn                 float64
	MaxFt, MaxTaun     float64
	Radius, CORRadius  float64

	HitMaxIter    bool
	Indeterminate bool
}

// NewEstimator checks that shape and model describe the same surface and
// that p is usable. cor may be nil.
func NewEstimator(
	shape *ContactShape, model *Model, p SolverParams, cor RadiusEstimator,
) (*Estimator, error) {
	if shape == nil || model == nil {
		return nil, errors.New("estimator needs both a shape and a model")
	} else if model.Ft == nil || model.Taun == nil {
		return nil, errors.New("estimator model is missing a basis set")
	} else if model.K != shape.K {
		return nil, errors.Wrapf(
			ErrConfigurationMismatch,
			"model was fit for k = %g, but the contact has k = %g",
			model.K, shape.K,
		)
	} else if err := p.Check(); err != nil {
		return nil, errors.Wrap(err, "invalid solver parameters")
	}

	return &Estimator{Shape: shape, Model: model, Solver: p, COR: cor}, nil
}

// Estimate inverts the limit-surface model for a measured tangential force
// ft and torque taun. guess is the starting contact ratio, usually the
// CTilde of the previous control cycle.
func (e *Estimator) Estimate(ft, taun, guess float64) Estimate {
	est := Estimate{}
	est.Sigma = Sigma(ft, taun, e.Shape)
	est.CTilde, est.HitMaxIter = e.Model.ContactRatio(
		est.Sigma, e.Shape.Gamma, guess, e.Solver,
	)

	est.FtTilde = e.Model.FtTilde(est.CTilde)
	est.TaunTilde = e.Model.TaunTilde(est.CTilde)
	est.Fn = NormalForce(ft, taun, est.FtTilde, est.TaunTilde, e.Shape)
	est.Indeterminate = IsIndeterminate(est.Fn)

	fn := math.Abs(est.Fn)
	est.MaxFt = MaxTangentialForce(fn, e.Shape.Mu)
	est.MaxTaun, est.Radius = e.Shape.MaxTorqueRadius(fn)

	if e.COR != nil {
		est.CORRadius = e.COR.Radius([]float64{est.CTilde})
	} else {
		est.CORRadius = math.NaN()
	}

	return est
}
