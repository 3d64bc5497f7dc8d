package extrapolation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/zne/errs"
)

func TestLinear_ExactDataWithZeroSigma(t *testing.T) {
	ex, err := NewLinear()
	require.NoError(t, err)

	x := []float64{1, 2, 3}
	res, err := ex.ExtrapolateZero(x, x, nil, []float64{0, 0, 0})
	require.NoError(t, err)

	assert.InDelta(t, 0, res.Value, 1e-9)
	assert.InDelta(t, 0, res.StdError, 1e-6)
	assert.InDelta(t, 1, res.Metadata.R2, 1e-9)
	require.Len(t, res.Metadata.Coefficients, 2)
	assert.InDelta(t, 1, res.Metadata.Coefficients[1], 1e-9)
	require.Len(t, res.Metadata.Residuals, 3)
	for _, r := range res.Metadata.Residuals {
		assert.InDelta(t, 0, r, 1e-9)
	}
}

func TestLinear_UnitSigma(t *testing.T) {
	ex, err := NewLinear()
	require.NoError(t, err)

	res, err := ex.ExtrapolateZero(
		[]float64{1, 2, 3, 4},
		[]float64{1.1, 1.9, 3.2, 3.9},
		nil, nil,
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, res.Value, 1e-9)
	assert.InDelta(t, 0.97, res.Metadata.Coefficients[1], 1e-9)
	// (XᵀX)⁻¹[0][0] = 30/20 with absolute unit errors
	assert.InDelta(t, math.Sqrt(1.5), res.StdError, 1e-9)
	require.Len(t, res.Metadata.CovarianceMatrix, 2)
	assert.InDelta(t, 1.5, res.Metadata.CovarianceMatrix[0][0], 1e-9)
	assert.InDelta(t, -0.5, res.Metadata.CovarianceMatrix[0][1], 1e-9)
	assert.InDelta(t, 0.2, res.Metadata.CovarianceMatrix[1][1], 1e-9)
	assert.Less(t, res.Metadata.R2, 1.0)
	assert.Greater(t, res.Metadata.R2, 0.95)
}

func TestLinear_WeightedSigma(t *testing.T) {
	ex, err := NewLinear()
	require.NoError(t, err)

	x := []float64{1, 2, 3}
	y := []float64{1.5, 1.0, 0.5}
	res, err := ex.ExtrapolateZero(x, y, nil, []float64{0.1, 0.1, 0.1})
	require.NoError(t, err)

	assert.InDelta(t, 2, res.Value, 1e-9)
	assert.InDelta(t, 0.1*math.Sqrt(14.0/6.0), res.StdError, 1e-9)
}

func TestQuadratic_RecoversCoefficients(t *testing.T) {
	ex, err := NewQuadratic()
	require.NoError(t, err)

	x := []float64{1, 2, 3, 4}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 1 + 2*v + 3*v*v
	}

	res, err := ex.ExtrapolateZero(x, y, nil, nil)
	require.NoError(t, err)

	require.Len(t, res.Metadata.Coefficients, 3)
	assert.InDelta(t, 1, res.Metadata.Coefficients[0], 1e-8)
	assert.InDelta(t, 2, res.Metadata.Coefficients[1], 1e-8)
	assert.InDelta(t, 3, res.Metadata.Coefficients[2], 1e-8)
	assert.InDelta(t, 1, res.Value, 1e-8)
	assert.InDelta(t, 1, res.Metadata.R2, 1e-12)
}

func TestPolynomial_ExactlyMinPointsWithZeroSigma(t *testing.T) {
	ex, err := NewLinear()
	require.NoError(t, err)

	res, err := ex.ExtrapolateZero([]float64{1, 3}, []float64{2, 4}, nil, []float64{0, 0})
	require.NoError(t, err)

	assert.InDelta(t, 1, res.Value, 1e-9)
	assert.Zero(t, res.StdError)
	assert.Equal(t, [][]float64{{0, 0}, {0, 0}}, res.Metadata.CovarianceMatrix)
}

func TestPolynomial_Validation(t *testing.T) {
	quad, err := NewQuadratic()
	require.NoError(t, err)

	t.Run("insufficient distinct points", func(t *testing.T) {
		_, err := quad.ExtrapolateZero([]float64{1, 1, 2}, []float64{1, 2, 3}, nil, nil)
		require.ErrorIs(t, err, errs.ErrInsufficientData)
		require.ErrorIs(t, err, errs.ErrInvalidValue)
		assert.Contains(t, err.Error(), "2 distinct")
		assert.Contains(t, err.Error(), "at least 3")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := quad.ExtrapolateZero(nil, nil, nil, nil)
		require.ErrorIs(t, err, errs.ErrInsufficientData)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := quad.ExtrapolateZero([]float64{1, 2, 3}, []float64{1, 2}, nil, nil)
		require.ErrorIs(t, err, errs.ErrLengthMismatch)
	})

	t.Run("sigma length mismatch", func(t *testing.T) {
		_, err := quad.ExtrapolateZero([]float64{1, 2, 3}, []float64{1, 2, 3}, nil, []float64{1})
		require.ErrorIs(t, err, errs.ErrLengthMismatch)
	})

	t.Run("not finite", func(t *testing.T) {
		_, err := quad.ExtrapolateZero([]float64{1, 2, 3}, []float64{1, math.NaN(), 3}, nil, nil)
		require.ErrorIs(t, err, errs.ErrNotFinite)
		require.ErrorIs(t, err, errs.ErrInvalidType)
	})

	t.Run("infinite sigma", func(t *testing.T) {
		_, err := quad.ExtrapolateZero([]float64{1, 2, 3}, []float64{1, 2, 3}, []float64{1, math.Inf(1), 1}, nil)
		require.ErrorIs(t, err, errs.ErrNotFinite)
	})
}

func TestPolynomial_MinPoints(t *testing.T) {
	ctors := map[string]func(...Option) (*Polynomial, error){
		"linear":    NewLinear,
		"quadratic": NewQuadratic,
		"cubic":     NewCubic,
		"quartic":   NewQuartic,
	}
	for name, ctor := range ctors {
		ex, err := ctor()
		require.NoError(t, err)
		assert.Equal(t, name, ex.Name())
		assert.Equal(t, ex.Degree()+1, ex.MinPoints())
	}

	_, err := NewPolynomial(0)
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	ex, err := NewPolynomial(5)
	require.NoError(t, err)
	assert.Equal(t, 6, ex.MinPoints())
	assert.Equal(t, ModelPolynomial, ex.Model())
}

func TestPolynomial_DoesNotMutateInput(t *testing.T) {
	ex, err := NewLinear()
	require.NoError(t, err)

	x := []float64{1, 2, 3}
	y := []float64{3, 2, 1}
	sigma := []float64{0.5, 0.5, 0.5}
	_, err = ex.ExtrapolateZero(x, y, nil, sigma)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3}, x)
	assert.Equal(t, []float64{3, 2, 1}, y)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, sigma)
}

func TestEvalPolynomial(t *testing.T) {
	assert.InDelta(t, 1+2*2+3*4, evalPolynomial([]float64{1, 2, 3}, 2), 1e-12)
	assert.Equal(t, 0.0, evalPolynomial(nil, 2))
}

func BenchmarkLinear_ExtrapolateZero(b *testing.B) {
	ex, err := NewLinear()
	require.NoError(b, err)

	x := []float64{1, 1.5, 2, 2.5, 3}
	y := []float64{0.9, 0.85, 0.81, 0.77, 0.72}

	for b.Loop() {
		if _, err := ex.ExtrapolateZero(x, y, nil, nil); err != nil {
			b.Fatal(err)
		}
	}
}
