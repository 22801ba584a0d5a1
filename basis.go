package limitsurface

import (
	"math"

	"github.com/pkg/errors"
)

// SigmoidBasis is a sum of logistic terms which approximates the normalized
// tangential force on the limit surface as a function of the contact ratio.
// The three slices are parallel and must not be modified after construction.
type SigmoidBasis struct {
	Gain, Mean, Exponent []float64
}

// GaussianBasis is a sum of Gaussian terms which approximates the normalized
// torque on the limit surface as a function of the contact ratio. The three
// slices are parallel and must not be modified after construction.
type GaussianBasis struct {
	Gain, Mean []float64
	// SigmaSquare holds variances, not standard deviations.
	SigmaSquare []float64
}

// Model is a fitted limit-surface model for a single value of k.
type Model struct {
	K    float64
	Ft   *SigmoidBasis
	Taun *GaussianBasis
}

// NewSigmoidBasis creates a SigmoidBasis from parallel slices of term
// parameters. The slices are copied.
func NewSigmoidBasis(gains, means, exponents []float64) (*SigmoidBasis, error) {
	if len(gains) != len(means) || len(gains) != len(exponents) {
		return nil, errors.Errorf(
			"sigmoid basis given %d gains, %d means and %d exponents",
			len(gains), len(means), len(exponents),
		)
	}

	b := &SigmoidBasis{
		Gain:     append([]float64{}, gains...),
		Mean:     append([]float64{}, means...),
		Exponent: append([]float64{}, exponents...),
	}
	return b, nil
}

// NewGaussianBasis creates a GaussianBasis from parallel slices of term
// parameters. sigmas are standard deviations and are squared before being
// stored.
func NewGaussianBasis(gains, means, sigmas []float64) (*GaussianBasis, error) {
	sqs := make([]float64, len(sigmas))
	for i, sig := range sigmas {
		sqs[i] = sig * sig
	}
	return NewGaussianBasisVariance(gains, means, sqs)
}

// NewGaussianBasisVariance is identical to NewGaussianBasis, except that the
// last argument already contains variances.
func NewGaussianBasisVariance(
	gains, means, sigmaSqs []float64,
) (*GaussianBasis, error) {
	if len(gains) != len(means) || len(gains) != len(sigmaSqs) {
		return nil, errors.Errorf(
			"Gaussian basis given %d gains, %d means and %d variances",
			len(gains), len(means), len(sigmaSqs),
		)
	}
	for i, sq := range sigmaSqs {
		if !(sq > 0) {
			return nil, errors.Errorf(
				"Gaussian term %d has a non-positive variance, %g", i, sq,
			)
		}
	}

	b := &GaussianBasis{
		Gain:        append([]float64{}, gains...),
		Mean:        append([]float64{}, means...),
		SigmaSquare: append([]float64{}, sigmaSqs...),
	}
	return b, nil
}

// Len returns the number of terms in the basis.
func (b *SigmoidBasis) Len() int { return len(b.Gain) }

// Len returns the number of terms in the basis.
func (b *GaussianBasis) Len() int { return len(b.Gain) }

// Sigmoid is a single logistic term. It is odd about mean and bounded in
// (-gain, gain).
func Sigmoid(x, gain, exponent, mean float64) float64 {
	return gain * (2/(1+math.Exp(-exponent*(x-mean))) - 1)
}

// DSigmoid is the derivative of Sigmoid with respect to x.
func DSigmoid(x, gain, exponent, mean float64) float64 {
	e := math.Exp(-exponent * (x - mean))
	return 2 * gain * exponent * e / ((1 + e) * (1 + e))
}

// Gauss is a single Gaussian term which peaks at mean with a value of gain.
func Gauss(x, gain, mean, sigmaSq float64) float64 {
	dx := x - mean
	return gain * math.Exp(-dx*dx/(2*sigmaSq))
}

// DGauss is the derivative of Gauss with respect to x.
func DGauss(x, gain, mean, sigmaSq float64) float64 {
	dx := x - mean
	return -gain * (dx / sigmaSq) * math.Exp(-dx*dx/(2*sigmaSq))
}

// FtTilde evaluates the normalized tangential force at contact ratio c.
func (b *SigmoidBasis) FtTilde(c float64) float64 {
	sum := 0.0
	for i := range b.Gain {
		sum += Sigmoid(c, b.Gain[i], b.Exponent[i], b.Mean[i])
	}
	return sum
}

// DFtTilde evaluates the derivative of FtTilde at contact ratio c.
func (b *SigmoidBasis) DFtTilde(c float64) float64 {
	sum := 0.0
	for i := range b.Gain {
		sum += DSigmoid(c, b.Gain[i], b.Exponent[i], b.Mean[i])
	}
	return sum
}

// TaunTilde evaluates the normalized torque at contact ratio c.
func (b *GaussianBasis) TaunTilde(c float64) float64 {
	sum := 0.0
	for i := range b.Gain {
		sum += Gauss(c, b.Gain[i], b.Mean[i], b.SigmaSquare[i])
	}
	return sum
}

// DTaunTilde evaluates the derivative of TaunTilde at contact ratio c.
func (b *GaussianBasis) DTaunTilde(c float64) float64 {
	sum := 0.0
	for i := range b.Gain {
		sum += DGauss(c, b.Gain[i], b.Mean[i], b.SigmaSquare[i])
	}
	return sum
}

func (m *Model) FtTilde(c float64) float64    { return m.Ft.FtTilde(c) }
func (m *Model) DFtTilde(c float64) float64   { return m.Ft.DFtTilde(c) }
func (m *Model) TaunTilde(c float64) float64  { return m.Taun.TaunTilde(c) }
func (m *Model) DTaunTilde(c float64) float64 { return m.Taun.DTaunTilde(c) }
