package extrapolation

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/zne/errs"
)

// Polynomial extrapolates with an OLS polynomial fit of fixed degree.
//
// The zero-noise value is the constant coefficient c0 and its standard error is
// the square root of the covariance entry Σ[0][0].
type Polynomial struct {
	name   string
	degree int
	cfg    *config
}

var _ Extrapolator = (*Polynomial)(nil)

// NewPolynomial creates a polynomial extrapolator of the given degree.
// Returns an error wrapping errs.ErrInvalidValue when degree < 1.
func NewPolynomial(degree int, opts ...Option) (*Polynomial, error) {
	return newPolynomial("polynomial", degree, opts)
}

// NewLinear creates a degree-1 polynomial extrapolator.
func NewLinear(opts ...Option) (*Polynomial, error) {
	return newPolynomial("linear", 1, opts)
}

// NewQuadratic creates a degree-2 polynomial extrapolator.
func NewQuadratic(opts ...Option) (*Polynomial, error) {
	return newPolynomial("quadratic", 2, opts)
}

// NewCubic creates a degree-3 polynomial extrapolator.
func NewCubic(opts ...Option) (*Polynomial, error) {
	return newPolynomial("cubic", 3, opts)
}

// NewQuartic creates a degree-4 polynomial extrapolator.
func NewQuartic(opts ...Option) (*Polynomial, error) {
	return newPolynomial("quartic", 4, opts)
}

func newPolynomial(name string, degree int, opts []Option) (*Polynomial, error) {
	if degree < 1 {
		return nil, fmt.Errorf("%w: polynomial degree must be >= 1, got %d", errs.ErrInvalidValue, degree)
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Polynomial{
		name:   name,
		degree: degree,
		cfg:    cfg,
	}, nil
}

// Degree returns the polynomial degree.
func (p *Polynomial) Degree() int { return p.degree }

// MinPoints returns degree + 1.
func (p *Polynomial) MinPoints() int { return p.degree + 1 }

// Name returns the library name the extrapolator was created under.
func (p *Polynomial) Name() string { return p.name }

// Model returns ModelPolynomial.
func (p *Polynomial) Model() Model { return ModelPolynomial }

func (p *Polynomial) String() string {
	return fmt.Sprintf("Polynomial{degree: %d}", p.degree)
}

// ExtrapolateZero fits the polynomial and evaluates it at x = 0.
func (p *Polynomial) ExtrapolateZero(x, y, sigmaX, sigmaY []float64) (*Result, error) {
	in, err := validate(x, y, sigmaX, sigmaY, p.MinPoints())
	if err != nil {
		return nil, err
	}

	sigma, absolute := computeSigma(in.y, in.sigmaY)
	coef, cov, err := solveLinear(vandermonde(in.x, p.degree), in.y, sigma, absolute)
	if err != nil {
		return nil, err
	}

	resid := residuals(in.x, in.y, func(v float64) float64 { return evalPolynomial(coef, v) })
	res := &Result{
		Value:    coef[0],
		StdError: math.Sqrt(cov.At(0, 0)),
		Metadata: Metadata{
			Coefficients:     coef,
			CovarianceMatrix: denseRows(cov),
			Residuals:        resid,
			R2:               rSquared(in.y, resid),
		},
	}

	p.cfg.logger.Debug("polynomial fit",
		zap.Int("degree", p.degree),
		zap.Bool("absolute_sigma", absolute),
		zap.Float64s("coefficients", coef),
		zap.Float64("r2", res.Metadata.R2),
	)

	return res, nil
}

// vandermonde builds the n×(degree+1) design matrix with columns x^0 … x^degree.
func vandermonde(x []float64, degree int) *mat.Dense {
	m := mat.NewDense(len(x), degree+1, nil)
	for i, v := range x {
		pow := 1.0
		for j := 0; j <= degree; j++ {
			m.Set(i, j, pow)
			pow *= v
		}
	}

	return m
}

// evalPolynomial evaluates Σ coef[i]·x^i using Horner's scheme.
func evalPolynomial(coef []float64, x float64) float64 {
	var y float64
	for i := len(coef) - 1; i >= 0; i-- {
		y = y*x + coef[i]
	}

	return y
}
