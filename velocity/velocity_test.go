package velocity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

var testParams = Params{
	Io: 1e-3, Mo: 0.1,
	BetaO2: 0.05, BetaO3: 0.04,
	Sigma02: 10, Sigma03: 8,
	FMax0: 1, FMax1: 0.8,
	COR: 0.01, B: 0.02,
}

func models() []Model {
	return []Model{New(RotationalKind, testParams), New(TranslationalKind, testParams)}
}

func numericalJacobian(m Model, x, u []float64) *mat.Dense {
	jac := mat.NewDense(StateDim, StateDim, nil)
	uVec := mat.NewVecDense(InputDim, u)
	f := func(y, xs []float64) {
		xVec := mat.NewVecDense(StateDim, append([]float64{}, xs...))
		copy(y, m.Derivative(xVec, uVec).RawVector().Data)
	}
	fd.Jacobian(jac, f, x, &fd.JacobianSettings{Formula: fd.Central})
	return jac
}

func TestJacobianFiniteDifference(t *testing.T) {
	points := [][]float64{
		{0.3, 0.02, -0.05},
		{-0.7, 0.1, 0.2},
		{2.5, -0.08, 0.09},
	}
	u := []float64{0.4}

	for _, m := range models() {
		for _, x := range points {
			num := numericalJacobian(m, x, u)
			ana := m.Jacobian(mat.NewVecDense(StateDim, x), mat.NewVecDense(InputDim, u))
			assert.True(
				t, mat.EqualApprox(num, ana, 1e-6),
				"%s Jacobian at %v:\nnumerical %v\nanalytic  %v",
				m.Kind(), x, mat.Formatted(num), mat.Formatted(ana),
			)
		}
	}
}

func TestJacobianAtRest(t *testing.T) {
	// At v = 0 the sign(v) terms vanish.
	x := mat.NewVecDense(StateDim, []float64{0, 0.3, -0.2})
	for _, m := range models() {
		jac := m.Jacobian(x, nil)
		assert.Equal(t, 1.0, jac.At(1, 0))
		assert.Equal(t, 1.0, jac.At(2, 0))
		assert.Equal(t, 0.0, math.Abs(jac.At(1, 1)))
		assert.Equal(t, 0.0, math.Abs(jac.At(2, 2)))
	}
}

func TestDerivative(t *testing.T) {
	p := testParams
	x := mat.NewVecDense(StateDim, []float64{-0.5, 0.1, 0.2})
	u := mat.NewVecDense(InputDim, []float64{0.3})

	f := -(p.BetaO2+p.BetaO3)*(-0.5) - p.Sigma02*0.1 - p.Sigma03*0.2 + 0.3
	z2 := -0.5 - p.Sigma02/p.FMax0*0.5*0.1
	z3 := -0.5 - p.Sigma03/p.FMax1*0.5*0.2

	rot := (&Rotational{p}).Derivative(x, u)
	inertia := p.Io + p.Mo*(p.COR+p.B)*(p.COR+p.B)
	assert.InDelta(t, f/inertia, rot.AtVec(0), 1e-9)
	assert.InDelta(t, z2, rot.AtVec(1), 1e-12)
	assert.InDelta(t, z3, rot.AtVec(2), 1e-12)

	tr := (&Translational{p}).Derivative(x, u)
	assert.InDelta(t, f/p.Mo, tr.AtVec(0), 1e-9)
	assert.InDelta(t, z2, tr.AtVec(1), 1e-12)
	assert.InDelta(t, z3, tr.AtVec(2), 1e-12)
}

func TestOutput(t *testing.T) {
	p := testParams
	x := mat.NewVecDense(StateDim, []float64{0.2, -0.1, 0.05})

	for _, m := range models() {
		y := m.Output(x, nil)
		require.Equal(t, OutputDim, y.Len())
		assert.InDelta(t, p.Sigma02*(-0.1)+p.BetaO2*0.2, y.AtVec(0), 1e-12)
		assert.InDelta(t, p.Sigma03*0.05+p.BetaO3*0.2, y.AtVec(1), 1e-12)

		// The output map is linear, so H*x must reproduce it.
		h := m.OutputJacobian(x, nil)
		hx := mat.NewVecDense(OutputDim, nil)
		hx.MulVec(h, x)
		assert.True(t, mat.EqualApprox(hx, y, 1e-12))
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" rotational ")
	require.NoError(t, err)
	assert.Equal(t, RotationalKind, k)

	k, err = ParseKind("Translational")
	require.NoError(t, err)
	assert.Equal(t, TranslationalKind, k)

	_, err = ParseKind("Spinning")
	assert.Error(t, err)

	for k = 0; k < EndKind; k++ {
		assert.Equal(t, k, New(k, testParams).Kind())
	}
}

func TestBadDims(t *testing.T) {
	m := New(RotationalKind, testParams)
	u := mat.NewVecDense(InputDim, []float64{1})
	assert.Panics(t, func() { m.Derivative(mat.NewVecDense(2, nil), u) })
	assert.Panics(t, func() { m.Derivative(mat.NewVecDense(StateDim, nil), nil) })
	assert.Panics(t, func() {
		m.Derivative(mat.NewVecDense(StateDim, nil), mat.NewVecDense(2, nil))
	})
}

func TestSimulate(t *testing.T) {
	u := mat.NewVecDense(InputDim, []float64{0})
	x0 := mat.NewVecDense(StateDim, []float64{0, 0, 0})

	for _, m := range models() {
		// Nothing moves without an input.
		xs := Simulate(m, x0, u, 1e-4, 10)
		require.Len(t, xs, 11)
		for _, x := range xs {
			assert.Equal(t, 0.0, mat.Norm(x, 2))
		}

		// A positive input accelerates the object in the positive direction
		// and loads both friction states.
		push := mat.NewVecDense(InputDim, []float64{0.05})
		xs = Simulate(m, x0, push, 1e-5, 200)
		last := xs[len(xs)-1]
		assert.Greater(t, last.AtVec(0), 0.0)
		assert.Greater(t, last.AtVec(1), 0.0)
		assert.Greater(t, last.AtVec(2), 0.0)

		// x0 must not be modified.
		assert.Equal(t, 0.0, mat.Norm(x0, 2))
	}
}

func TestStepMatchesDerivative(t *testing.T) {
	// For a tiny step, RK4 must agree with an Euler step to first order.
	m := New(TranslationalKind, testParams)
	x := mat.NewVecDense(StateDim, []float64{0.1, 0.01, -0.02})
	u := mat.NewVecDense(InputDim, []float64{0.2})
	dt := 1e-7

	next := Step(m, x, u, dt)
	d := m.Derivative(x, u)
	for i := 0; i < StateDim; i++ {
		assert.InDelta(t, x.AtVec(i)+dt*d.AtVec(i), next.AtVec(i), 1e-10)
	}
}

func BenchmarkJacobian(b *testing.B) {
	m := New(RotationalKind, testParams)
	x := mat.NewVecDense(StateDim, []float64{0.3, 0.02, -0.05})
	u := mat.NewVecDense(InputDim, []float64{0.4})
	for i := 0; i < b.N; i++ {
		m.Jacobian(x, u)
	}
}
