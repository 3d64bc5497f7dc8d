package extrapolation

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/arloliu/zne/errs"
)

// MultiExponential extrapolates with the model
//
//	y(x) = shift + Σ_{j=1..t} a_j·exp(−r_j·x),  r_j ≥ 0
//
// fitted by bounded Levenberg-Marquardt. The parameter vector is laid out as
// [shift, a_1, r_1, …, a_t, r_t] and starts from the guess p_i = 2^−i.
// The zero-noise value is shift + Σ a_j.
type MultiExponential struct {
	name     string
	numTerms int
	cfg      *config
}

var _ Extrapolator = (*MultiExponential)(nil)

// NewMultiExponential creates an extrapolator with numTerms exponential terms.
// More than one term makes the fit numerically unstable and logs a warning.
func NewMultiExponential(numTerms int, opts ...Option) (*MultiExponential, error) {
	return newMultiExponential("multi_exponential", numTerms, opts)
}

// NewMonoExponential creates a single-term exponential extrapolator.
func NewMonoExponential(opts ...Option) (*MultiExponential, error) {
	return newMultiExponential("mono_exponential", 1, opts)
}

// NewExponential is an alias of NewMonoExponential.
func NewExponential(opts ...Option) (*MultiExponential, error) {
	return newMultiExponential("exponential", 1, opts)
}

// NewBiExponential creates a two-term exponential extrapolator.
func NewBiExponential(opts ...Option) (*MultiExponential, error) {
	return newMultiExponential("bi_exponential", 2, opts)
}

func newMultiExponential(name string, numTerms int, opts []Option) (*MultiExponential, error) {
	if numTerms < 1 {
		return nil, fmt.Errorf("%w: number of exponential terms must be >= 1, got %d", errs.ErrInvalidValue, numTerms)
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if numTerms > 1 {
		cfg.warn("multi-exponential model is unstable beyond one term", zap.Int("num_terms", numTerms))
	}

	return &MultiExponential{
		name:     name,
		numTerms: numTerms,
		cfg:      cfg,
	}, nil
}

// NumTerms returns the number of exponential terms.
func (e *MultiExponential) NumTerms() int { return e.numTerms }

// MinPoints returns 2·numTerms + 1, the number of fit parameters.
func (e *MultiExponential) MinPoints() int { return 2*e.numTerms + 1 }

// Name returns the library name the extrapolator was created under.
func (e *MultiExponential) Name() string { return e.name }

// Model returns ModelMultiExponential.
func (e *MultiExponential) Model() Model { return ModelMultiExponential }

func (e *MultiExponential) String() string {
	return fmt.Sprintf("MultiExponential{num_terms: %d}", e.numTerms)
}

// ExtrapolateZero fits the model and evaluates it at x = 0.
func (e *MultiExponential) ExtrapolateZero(x, y, sigmaX, sigmaY []float64) (*Result, error) {
	in, err := validate(x, y, sigmaX, sigmaY, e.MinPoints())
	if err != nil {
		return nil, err
	}

	model := expCurve{terms: e.numTerms}
	sigma, absolute := computeSigma(in.y, in.sigmaY)
	fit, err := levenbergMarquardt(model, in.x, in.y, sigma, initialGuess(model.numParams()))
	if err != nil {
		// Data without decay can leave the interior start in a valley that
		// slides towards the rate bound. Restart from the bound.
		var retryErr error
		fit, retryErr = levenbergMarquardt(model, in.x, in.y, sigma, boundaryGuess(model.numParams(), in.y, sigma))
		if retryErr != nil {
			return nil, err
		}
		e.cfg.logger.Debug("multi-exponential fit restarted at rate bound", zap.Error(err))
	}

	coef := fit.params
	resid := residuals(in.x, in.y, func(v float64) float64 { return model.eval(v, coef) })
	if !absolute {
		var rss float64
		for _, r := range resid {
			rss += r * r
		}
		scaleCovariance(fit.covariance, rss, len(in.x), len(coef))
	}

	// Var(shift + Σa) from the shift and amplitude block of the covariance.
	var variance float64
	for i := 0; i < len(coef); i++ {
		if isRate(i) {
			continue
		}
		for j := 0; j < len(coef); j++ {
			if isRate(j) {
				continue
			}
			variance += fit.covariance.At(i, j)
		}
	}

	value := coef[0]
	for j := 1; j < len(coef); j += 2 {
		value += coef[j]
	}

	res := &Result{
		Value:    value,
		StdError: math.Sqrt(variance),
		Metadata: Metadata{
			Coefficients:     coef,
			CovarianceMatrix: denseRows(fit.covariance),
			Residuals:        resid,
			R2:               rSquared(in.y, resid),
		},
	}

	e.cfg.logger.Debug("multi-exponential fit",
		zap.Int("num_terms", e.numTerms),
		zap.Int("iterations", fit.iterations),
		zap.Bool("absolute_sigma", absolute),
		zap.Float64s("coefficients", coef),
		zap.Float64("r2", res.Metadata.R2),
	)

	return res, nil
}

// isRate reports whether parameter index i is a decay rate.
func isRate(i int) bool {
	return i > 0 && i%2 == 0
}

func initialGuess(n int) []float64 {
	p0 := make([]float64, n)
	for i := range p0 {
		p0[i] = math.Ldexp(1, -i)
	}

	return p0
}

// boundaryGuess keeps the amplitudes of initialGuess, pins every rate at zero
// and picks the shift so the constant model matches the weighted mean of y.
func boundaryGuess(n int, y, sigma []float64) []float64 {
	p0 := initialGuess(n)
	var sum, weight float64
	for i := range y {
		w := 1 / (sigma[i] * sigma[i])
		sum += w * y[i]
		weight += w
	}
	p0[0] = sum / weight
	for i := 1; i < n; i++ {
		if isRate(i) {
			p0[i] = 0
		} else {
			p0[0] -= p0[i]
		}
	}

	return p0
}

type expCurve struct {
	terms int
}

func (c expCurve) numParams() int { return 2*c.terms + 1 }

func (c expCurve) eval(x float64, params []float64) float64 {
	y := params[0]
	for j := 1; j < len(params); j += 2 {
		y += params[j] * math.Exp(-params[j+1]*x)
	}

	return y
}

func (c expCurve) gradient(x float64, params []float64, dst []float64) {
	dst[0] = 1
	for j := 1; j < len(params); j += 2 {
		e := math.Exp(-params[j+1] * x)
		dst[j] = e
		dst[j+1] = -params[j] * x * e
	}
}

func (c expCurve) bounded(i int) bool { return isRate(i) }

func (c expCurve) project(params []float64) {
	for i := range params {
		if isRate(i) && params[i] < 0 {
			params[i] = 0
		}
	}
}
