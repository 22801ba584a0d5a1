/*package limitsurface estimates the normal force at a soft-finger contact from
measured tangential force and spin torque by inverting a limit-surface
friction model.

The contact is described by a ContactShape (pressure distribution exponent,
friction coefficient and the radius law delta*fn^gamma) and by a Model, the
fitted sigmoid and Gaussian basis sets that give the normalized tangential
force and torque on the limit surface as functions of the contact ratio
c_tilde. Everything in this package is a pure function of its arguments.
*/
package limitsurface

import (
	"math"
)

// ContactShape holds the parameters of a contact's limit surface. XikNuk and
// Alpha are derived from the other four fields and are only valid after a
// call to Recompute.
type ContactShape struct {
	// K is the exponent of the pressure distribution. math.Inf(+1) is a
	// uniform distribution.
	K float64
	Mu float64
	// The contact radius is Delta * fn^Gamma.
	Delta, Gamma float64

	// Derived.
	XikNuk, Alpha float64
}

// NewContactShape returns a ContactShape with its derived fields computed.
func NewContactShape(k, mu, delta, gamma float64) *ContactShape {
	s := &ContactShape{K: k, Mu: mu, Delta: delta, Gamma: gamma}
	s.Recompute()
	return s
}

// Recompute updates XikNuk and Alpha. It must be called after any change to
// K, Mu, Delta or Gamma.
func (s *ContactShape) Recompute() {
	s.XikNuk = XikNuk(s.K)
	s.Alpha = s.ComputeAlpha()
}

// XikNuk returns the dimensionless shape integral of a pressure distribution
// with exponent k. It is 1/3 for an infinite k and 0 for k == 0.
func XikNuk(k float64) float64 {
	if math.IsInf(k, 0) {
		return 1.0 / 3
	} else if k == 0 {
		return 0
	}

	g3 := math.Gamma(3 / k)
	return (3.0 / 8) * g3 * g3 / (math.Gamma(2/k) * math.Gamma(4/k))
}

// ComputeAlpha returns 2 * mu * xik_nuk * delta using the currently stored
// XikNuk.
func (s *ContactShape) ComputeAlpha() float64 {
	return 2 * s.Mu * s.XikNuk * s.Delta
}

// SignedPow returns sign(x) * |x|^e.
func SignedPow(x, e float64) float64 {
	return sign(x) * math.Pow(math.Abs(x), e)
}

// DSignedPow returns e * |x|^(e-1). This is the derivative of |x|^e and not of
// SignedPow: the two differ by sign(x). The contact ratio gradient relies on
// exactly this form.
func DSignedPow(x, e float64) float64 {
	return e * math.Pow(math.Abs(x), e-1)
}

func sign(x float64) float64 {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	}
	return 0
}

// Sigma computes the limit-surface ratio from a raw tangential force and
// torque. This is the value the contact ratio solver tries to match.
func Sigma(ft, taun float64, s *ContactShape) float64 {
	scale := 2 * s.XikNuk * s.Delta / math.Pow(s.Mu, s.Gamma)
	return scale * SignedPow(ft, s.Gamma+1) / taun
}

// SigmaTilde computes the same ratio as Sigma from an already normalized
// tangential force and torque.
func SigmaTilde(ftTilde, taunTilde, gamma float64) float64 {
	return SignedPow(ftTilde, gamma+1) / taunTilde
}

// MaxTangentialForce returns the largest tangential force the contact can
// hold under a normal force fn.
func MaxTangentialForce(fn, mu float64) float64 {
	return mu * fn
}

// Radius returns the contact radius under a normal force fn.
func (s *ContactShape) Radius(fn float64) float64 {
	return s.Delta * math.Pow(fn, s.Gamma)
}

// MaxTorque returns the largest spin torque the contact can hold under a
// normal force fn.
func (s *ContactShape) MaxTorque(fn float64) float64 {
	tau, _ := s.MaxTorqueRadius(fn)
	return tau
}

// MaxTorqueRadius is identical to MaxTorque, but also returns the contact
// radius used in the computation.
func (s *ContactShape) MaxTorqueRadius(fn float64) (tau, radius float64) {
	radius = s.Radius(fn)
	return 2 * s.Mu * s.XikNuk * fn * radius, radius
}
