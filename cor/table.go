/*package cor estimates the radius of a contact's centre of rotation from
the contact ratio found by the limit-surface inversion. Radii are tabulated
offline and interpolated at run time.*/
package cor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/interp"

	"github.com/slipcontrol/limitsurface"
)

type Method int

const (
	Linear Method = iota
	Cubic
	Monotone
	EndMethod
)

func (m Method) String() string {
	switch m {
	case Linear:
		return "Linear"
	case Cubic:
		return "Cubic"
	case Monotone:
		return "Monotone"
	}
	panic(fmt.Sprintf("Unrecognized interpolation method %d", int(m)))
}

// ParseMethod returns the Method with the given (case-insensitive) name.
func ParseMethod(name string) (Method, error) {
	var m Method
	for m = 0; m < EndMethod; m++ {
		if strings.ToLower(m.String()) == strings.ToLower(strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return EndMethod, fmt.Errorf(
		"Interpolation method must be one of [Linear | Cubic | Monotone]. "+
			"'%s' is not recognized.", name,
	)
}

func (m Method) fitter() interp.FittablePredictor {
	switch m {
	case Linear:
		return &interp.PiecewiseLinear{}
	case Cubic:
		return &interp.NaturalCubic{}
	case Monotone:
		return &interp.FritschButland{}
	}
	panic(fmt.Sprintf("Unrecognized interpolation method %d", int(m)))
}

// Table is a RadiusEstimator which interpolates a tabulated radius as a
// function of the contact ratio. Outside the tabulated range the radius of
// the nearest end point is used.
type Table struct {
	Ratio, Radii []float64
	Method       Method

	pred interp.Predictor
}

var _ limitsurface.RadiusEstimator = &Table{}

type pairs struct{ xs, ys []float64 }

func (p *pairs) Len() int           { return len(p.xs) }
func (p *pairs) Less(i, j int) bool { return p.xs[i] < p.xs[j] }
func (p *pairs) Swap(i, j int) {
	p.xs[i], p.xs[j] = p.xs[j], p.xs[i]
	p.ys[i], p.ys[j] = p.ys[j], p.ys[i]
}

// NewTable fits a Table to (ratio, radius) pairs, which may be given in any
// order. The inputs are copied.
func NewTable(ratio, radius []float64, method Method) (*Table, error) {
	if len(ratio) != len(radius) {
		return nil, fmt.Errorf(
			"COR table has %d ratios but %d radii.", len(ratio), len(radius),
		)
	} else if len(ratio) < 2 {
		return nil, fmt.Errorf(
			"COR table needs at least 2 rows, but has %d.", len(ratio),
		)
	} else if method < 0 || method >= EndMethod {
		return nil, fmt.Errorf("Unrecognized interpolation method %d.", int(method))
	}

	t := &Table{
		Ratio:  append([]float64{}, ratio...),
		Radii:  append([]float64{}, radius...),
		Method: method,
	}
	for i := range t.Ratio {
		if math.IsNaN(t.Ratio[i]) || math.IsInf(t.Ratio[i], 0) ||
			math.IsNaN(t.Radii[i]) || math.IsInf(t.Radii[i], 0) {
			return nil, fmt.Errorf(
				"COR table row %d, (%g, %g), is not finite.",
				i, t.Ratio[i], t.Radii[i],
			)
		}
	}

	sort.Sort(&pairs{t.Ratio, t.Radii})
	for i := 1; i < len(t.Ratio); i++ {
		if t.Ratio[i] == t.Ratio[i-1] {
			return nil, fmt.Errorf(
				"COR table contains the ratio %g more than once.", t.Ratio[i],
			)
		}
	}

	fit := method.fitter()
	if err := fit.Fit(t.Ratio, t.Radii); err != nil {
		return nil, err
	}
	t.pred = fit

	return t, nil
}

// Radius returns the interpolated radius at the contact ratio features[0].
// It returns NaN if there is no usable ratio.
func (t *Table) Radius(features []float64) float64 {
	if len(features) == 0 || math.IsNaN(features[0]) {
		return math.NaN()
	}
	return t.pred.Predict(features[0])
}

// Range returns the smallest and largest tabulated ratio.
func (t *Table) Range() (lo, hi float64) {
	return t.Ratio[0], t.Ratio[len(t.Ratio)-1]
}
