/*velocity contains continuous-time state-space models of an object held
between two friction contacts while it slides or rotates.

The state is x = [v, z2, z3]: the object's (angular or linear) velocity and
the internal states of the two contacts' Dahl-style friction models. The input
is u = [f], the driving torque or force, and the output is the pair of
friction forces predicted by the two contacts.

The models only evaluate f(x, u), h(x, u) and their Jacobians. Integration and
filtering belong to the caller.
*/
package velocity

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const (
	StateDim  = 3
	InputDim  = 1
	OutputDim = 2
)

// Params are the physical constants of the two-contact system.
type Params struct {
	// Io is the object's moment of inertia and Mo its mass.
	Io, Mo float64
	// Viscous friction coefficients of the two contacts.
	BetaO2, BetaO3 float64
	// Stiffnesses of the two contacts' friction states.
	Sigma02, Sigma03 float64
	// Saturation forces of the two contacts.
	FMax0, FMax1 float64
	// COR is the distance of the centre of rotation from the contact and B
	// the offset of the centre of mass.
	COR, B float64
}

// Model is a state-space model of the velocity dynamics.
type Model interface {
	// Derivative returns dx/dt.
	Derivative(x, u mat.Vector) *mat.VecDense
	// Jacobian returns d(dx/dt)/dx.
	Jacobian(x, u mat.Vector) *mat.Dense
	// Output returns the observation y.
	Output(x, u mat.Vector) *mat.VecDense
	// OutputJacobian returns dy/dx.
	OutputJacobian(x, u mat.Vector) *mat.Dense

	Params() Params
	Kind() Kind
}

// Kind identifies a parameterization of the velocity dynamics.
type Kind int

const (
	RotationalKind Kind = iota
	TranslationalKind
	EndKind
)

func (k Kind) String() string {
	switch k {
	case RotationalKind:
		return "Rotational"
	case TranslationalKind:
		return "Translational"
	}
	panic(fmt.Sprintf("Unrecognized velocity model kind %d", int(k)))
}

// ParseKind returns the Kind with the given (case-insensitive) name.
func ParseKind(name string) (Kind, error) {
	var k Kind
	for k = 0; k < EndKind; k++ {
		if strings.ToLower(k.String()) == strings.ToLower(strings.TrimSpace(name)) {
			return k, nil
		}
	}
	return EndKind, fmt.Errorf(
		"Velocity model must be one of [Rotational | Translational]. "+
			"'%s' is not recognized.", name,
	)
}

// New returns the model of the given kind.
func New(kind Kind, p Params) Model {
	switch kind {
	case RotationalKind:
		return &Rotational{p}
	case TranslationalKind:
		return &Translational{p}
	}
	panic(fmt.Sprintf("Unrecognized velocity model kind %d", int(kind)))
}

// Rotational models an object rotating about a centre of rotation at
// distance COR+B from its centre of mass.
type Rotational struct{ P Params }

// Translational models an object sliding without rotation.
type Translational struct{ P Params }

// Inertia returns the effective inertia Io + Mo*(COR + B)^2.
func (m *Rotational) Inertia() float64 {
	d := m.P.COR + m.P.B
	return m.P.Io + m.P.Mo*d*d
}

// Inertia returns the mass, Mo.
func (m *Translational) Inertia() float64 { return m.P.Mo }

func (m *Rotational) Params() Params    { return m.P }
func (m *Translational) Params() Params { return m.P }

func (m *Rotational) Kind() Kind    { return RotationalKind }
func (m *Translational) Kind() Kind { return TranslationalKind }

func (m *Rotational) Derivative(x, u mat.Vector) *mat.VecDense {
	return derivative(&m.P, 1/m.Inertia(), x, u)
}

func (m *Translational) Derivative(x, u mat.Vector) *mat.VecDense {
	return derivative(&m.P, 1/m.Inertia(), x, u)
}

func (m *Rotational) Jacobian(x, u mat.Vector) *mat.Dense {
	return jacobian(&m.P, 1/m.Inertia(), x)
}

func (m *Translational) Jacobian(x, u mat.Vector) *mat.Dense {
	return jacobian(&m.P, 1/m.Inertia(), x)
}

func (m *Rotational) Output(x, u mat.Vector) *mat.VecDense {
	return output(&m.P, x)
}

func (m *Translational) Output(x, u mat.Vector) *mat.VecDense {
	return output(&m.P, x)
}

func (m *Rotational) OutputJacobian(x, u mat.Vector) *mat.Dense {
	return outputJacobian(&m.P)
}

func (m *Translational) OutputJacobian(x, u mat.Vector) *mat.Dense {
	return outputJacobian(&m.P)
}

func checkDims(x, u mat.Vector) {
	if x.Len() != StateDim {
		panic(fmt.Sprintf("State has length %d, not %d.", x.Len(), StateDim))
	} else if u != nil && u.Len() != InputDim {
		panic(fmt.Sprintf("Input has length %d, not %d.", u.Len(), InputDim))
	}
}

func sign(x float64) float64 {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	}
	return 0
}

// derivative is shared by both models, which only differ in den, the inverse
// of their inertia.
func derivative(p *Params, den float64, x, u mat.Vector) *mat.VecDense {
	if u == nil {
		panic("Derivative needs an input vector.")
	}
	checkDims(x, u)
	v, z2, z3 := x.AtVec(0), x.AtVec(1), x.AtVec(2)

	f := -(p.BetaO2+p.BetaO3)*v - p.Sigma02*z2 - p.Sigma03*z3 + u.AtVec(0)
	return mat.NewVecDense(StateDim, []float64{
		den * f,
		v - p.Sigma02/p.FMax0*math.Abs(v)*z2,
		v - p.Sigma03/p.FMax1*math.Abs(v)*z3,
	})
}

// jacobian is discontinuous at v = 0 through sign(v), since |v| has no
// derivative there. At exactly v = 0 the sign terms vanish.
func jacobian(p *Params, den float64, x mat.Vector) *mat.Dense {
	checkDims(x, nil)
	v, z2, z3 := x.AtVec(0), x.AtVec(1), x.AtVec(2)
	k2, k3 := p.Sigma02/p.FMax0, p.Sigma03/p.FMax1

	return mat.NewDense(StateDim, StateDim, []float64{
		-den * (p.BetaO2 + p.BetaO3), -p.Sigma02 * den, -p.Sigma03 * den,
		1 - k2*z2*sign(v), -k2 * math.Abs(v), 0,
		1 - k3*z3*sign(v), 0, -k3 * math.Abs(v),
	})
}

func output(p *Params, x mat.Vector) *mat.VecDense {
	checkDims(x, nil)
	v, z2, z3 := x.AtVec(0), x.AtVec(1), x.AtVec(2)
	return mat.NewVecDense(OutputDim, []float64{
		p.Sigma02*z2 + p.BetaO2*v,
		p.Sigma03*z3 + p.BetaO3*v,
	})
}

func outputJacobian(p *Params) *mat.Dense {
	return mat.NewDense(OutputDim, StateDim, []float64{
		p.BetaO2, p.Sigma02, 0,
		p.BetaO3, 0, p.Sigma03,
	})
}
