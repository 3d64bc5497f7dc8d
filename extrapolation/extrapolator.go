package extrapolation

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/zne/errs"
)

// Extrapolator fits a model to (x, y) data and evaluates it at x = 0.
//
// sigmaX and sigmaY are the standard errors of the data; nil means all ones.
// A zero sigma marks exact data.
type Extrapolator interface {
	ExtrapolateZero(x, y, sigmaX, sigmaY []float64) (*Result, error)
	// MinPoints is the minimum number of distinct x values the model needs.
	MinPoints() int
	Name() string
}

// Result is the outcome of one extrapolation.
type Result struct {
	Value    float64
	StdError float64
	Metadata Metadata
}

func (r *Result) String() string {
	return fmt.Sprintf("Result{Value: %.6g, StdError: %.6g, R²: %.4f}", r.Value, r.StdError, r.Metadata.R2)
}

// Metadata holds the fit diagnostics of an OLS extrapolation.
type Metadata struct {
	Coefficients     []float64
	CovarianceMatrix [][]float64
	Residuals        []float64
	R2               float64
}

// Map exposes the diagnostics under their conventional keys.
func (m Metadata) Map() map[string]any {
	return map[string]any{
		"coefficients":      slices.Clone(m.Coefficients),
		"covariance_matrix": cloneMatrix(m.CovarianceMatrix),
		"residuals":         slices.Clone(m.Residuals),
		"R2":                m.R2,
	}
}

// Datum is a single regression sample.
type Datum struct {
	X      float64
	Y      float64
	SigmaX float64
	SigmaY float64
}

// Data holds regression samples as parallel series.
type Data struct {
	X      []float64
	Y      []float64
	SigmaX []float64
	SigmaY []float64
}

// CollectData converts samples into parallel series.
func CollectData(datums []Datum) Data {
	d := Data{
		X:      make([]float64, len(datums)),
		Y:      make([]float64, len(datums)),
		SigmaX: make([]float64, len(datums)),
		SigmaY: make([]float64, len(datums)),
	}
	for i, datum := range datums {
		d.X[i] = datum.X
		d.Y[i] = datum.Y
		d.SigmaX[i] = datum.SigmaX
		d.SigmaY[i] = datum.SigmaY
	}

	return d
}

// ExtrapolateData runs ex on d.
func ExtrapolateData(ex Extrapolator, d Data) (*Result, error) {
	return ex.ExtrapolateZero(d.X, d.Y, d.SigmaX, d.SigmaY)
}

// ExtrapolateDatums runs ex on datums.
func ExtrapolateDatums(ex Extrapolator, datums []Datum) (*Result, error) {
	return ExtrapolateData(ex, CollectData(datums))
}

// Equal reports whether two extrapolators fit the same model. Facades compare
// equal to the general extrapolator they configure.
func Equal(a, b Extrapolator) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch pa := a.(type) {
	case *Polynomial:
		pb, ok := b.(*Polynomial)
		return ok && pa.degree == pb.degree
	case *MultiExponential:
		pb, ok := b.(*MultiExponential)
		return ok && pa.numTerms == pb.numTerms
	default:
		return a.Name() == b.Name() && a.MinPoints() == b.MinPoints()
	}
}

// validated is the checked, defaulted input of a fit.
type validated struct {
	x, y, sigmaX, sigmaY []float64
}

func validate(x, y, sigmaX, sigmaY []float64, minPoints int) (validated, error) {
	if sigmaX == nil {
		sigmaX = ones(len(x))
	}
	if sigmaY == nil {
		sigmaY = ones(len(y))
	}

	series := []struct {
		name   string
		values []float64
	}{
		{"x", x}, {"y", y}, {"sigma_x", sigmaX}, {"sigma_y", sigmaY},
	}
	for _, s := range series {
		for i, v := range s.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validated{}, fmt.Errorf("%s[%d] = %v: %w", s.name, i, v, errs.ErrNotFinite)
			}
		}
	}

	if len(x) != len(y) || len(x) != len(sigmaX) || len(x) != len(sigmaY) {
		return validated{}, fmt.Errorf("%w: len(x)=%d, len(y)=%d, len(sigma_x)=%d, len(sigma_y)=%d",
			errs.ErrLengthMismatch, len(x), len(y), len(sigmaX), len(sigmaY))
	}

	if distinct := countDistinct(x); distinct < minPoints {
		return validated{}, fmt.Errorf("%w: %d distinct data points provided, at least %d needed",
			errs.ErrInsufficientData, distinct, minPoints)
	}

	return validated{
		x:      slices.Clone(x),
		y:      slices.Clone(y),
		sigmaX: slices.Clone(sigmaX),
		sigmaY: slices.Clone(sigmaY),
	}, nil
}

func countDistinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	return len(seen)
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}

	return out
}

func cloneMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
	}

	return out
}
