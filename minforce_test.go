package limitsurface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolynomial(t *testing.T) {
	p := Polynomial{2, -3, 0, 1} // 2x^3 - 3x^2 + 1
	assert.Equal(t, 1.0, p.Eval(0))
	assert.Equal(t, 0.0, p.Eval(1))
	assert.Equal(t, 5.0, p.Eval(2))

	d := p.Deriv()
	assert.Equal(t, Polynomial{6, -6, 0}, d)
	assert.Equal(t, 12.0, d.Eval(2))

	assert.Equal(t, Polynomial{0}, Polynomial{7}.Deriv())
	assert.Equal(t, Polynomial{0}, Polynomial{}.Deriv())
	assert.Equal(t, 0.0, Polynomial{}.Eval(3))
}

// lineSurfacePoint returns a measurement which lies exactly on the line
// limit surface at normal force fn with normalized tangential force ftNorm.
func lineSurfacePoint(s *ContactShape, fn, ftNorm float64) (ft, taun float64) {
	ft = ftNorm * s.Gamma * fn
	taun = LineLimitSurface(ftNorm) * s.Alpha * math.Pow(fn, 1+s.Gamma)
	return ft, taun
}

func TestMinForceCost(t *testing.T) {
	s := NewContactShape(4, 0.5, 0.003, 0.3)
	ft, taun := lineSurfacePoint(s, 5, 0.4)

	assert.InDelta(t, 0, MinForceCost(5, LineLimitSurface, ft, taun, s), 1e-12)
	assert.Equal(t,
		MinForceCost(5, LineLimitSurface, ft, taun, s),
		MinForceCost(-5, LineLimitSurface, ft, taun, s),
	)
	assert.Equal(t, 10.0, MinForceCost(0, LineLimitSurface, ft, taun, s))

	// Below fn = ft/Gamma the normalized force saturates at one.
	assert.InDelta(t,
		-taun/(s.Alpha*math.Pow(1.5, 1.3)),
		MinForceCost(1.5, LineLimitSurface, ft, taun, s), 1e-12,
	)
}

func TestMinForceGrad(t *testing.T) {
	s := NewContactShape(4, 0.5, 0.003, 0.3)
	ft, taun := lineSurfacePoint(s, 5, 0.4)
	h := 1e-6

	assert.Equal(t, -1.0, MinForceGrad(0, DLineLimitSurface, ft, taun, s))

	// fn = 2 is the kink where the normalized force saturates.
	for _, fn := range []float64{-3, 1, 3, 4, 6, 8} {
		num := (MinForceCost(fn+h, LineLimitSurface, ft, taun, s) -
			MinForceCost(fn-h, LineLimitSurface, ft, taun, s)) / (2 * h)
		grad := MinForceGrad(fn, DLineLimitSurface, ft, taun, s)
		assert.InDelta(t, num, grad, 1e-6*math.Max(1, math.Abs(num)), "fn = %g", fn)
	}
}

func TestMinNormalForce(t *testing.T) {
	s := NewContactShape(4, 0.5, 0.003, 0.3)
	ft, taun := lineSurfacePoint(s, 5, 0.4)
	p := DefaultSolverParams()

	for _, fn0 := range []float64{1.5, 3, 4, 8} {
		fn, hit := MinNormalForce(
			LineLimitSurface, DLineLimitSurface, ft, taun, s, fn0, p,
		)
		require.False(t, hit, "fn0 = %g", fn0)
		assert.InDelta(t, 5, fn, 1e-6, "fn0 = %g", fn0)
	}
}

func TestMinNormalForcePolynomial(t *testing.T) {
	// A concave surface through (0, 1) and (1, 0).
	ls := Polynomial{-1, 0, 1}
	dls := ls.Deriv()
	s := NewContactShape(4, 0.5, 0.003, 0.3)

	fnWant, ftNorm := 7.0, 0.5
	ft := ftNorm * s.Gamma * fnWant
	taun := ls.Eval(ftNorm) * s.Alpha * math.Pow(fnWant, 1+s.Gamma)

	fn, hit := MinNormalForce(ls.Eval, dls.Eval, ft, taun, s, 6, DefaultSolverParams())
	require.False(t, hit)
	assert.InDelta(t, fnWant, fn, 1e-6)
}
