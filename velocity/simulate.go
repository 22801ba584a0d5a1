package velocity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Step advances x by dt under a constant input u with a classical fourth
// order Runge-Kutta step.
func Step(m Model, x, u mat.Vector, dt float64) *mat.VecDense {
	k1 := m.Derivative(x, u)

	tmp := mat.NewVecDense(StateDim, nil)
	tmp.AddScaledVec(x, dt/2, k1)
	k2 := m.Derivative(tmp, u)

	tmp.AddScaledVec(x, dt/2, k2)
	k3 := m.Derivative(tmp, u)

	tmp.AddScaledVec(x, dt, k3)
	k4 := m.Derivative(tmp, u)

	out := mat.VecDenseCopyOf(x)
	out.AddScaledVec(out, dt/6, k1)
	out.AddScaledVec(out, dt/3, k2)
	out.AddScaledVec(out, dt/3, k3)
	out.AddScaledVec(out, dt/6, k4)
	return out
}

// Simulate integrates the model from x0 for the given number of steps under
// a constant input. The returned slice has steps + 1 states, starting with a
// copy of x0.
func Simulate(m Model, x0, u mat.Vector, dt float64, steps int) []*mat.VecDense {
	if steps < 0 {
		panic(fmt.Sprintf("Simulate given %d steps.", steps))
	}

	xs := make([]*mat.VecDense, steps+1)
	xs[0] = mat.VecDenseCopyOf(x0)
	for i := 1; i <= steps; i++ {
		xs[i] = Step(m, xs[i-1], u, dt)
	}
	return xs
}
