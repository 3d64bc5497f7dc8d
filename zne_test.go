package zne

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arloliu/zne/amplifier"
	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/strategy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// linearBackend measures 1 − slope·nf for every variant.
func linearBackend(s *strategy.Strategy, slope float64) strategy.ExecutorFunc {
	return func(_ context.Context, seqs []circuit.Sequence, _ []any) ([]strategy.RawResult, error) {
		nfs := s.NoiseFactors()
		out := make([]strategy.RawResult, len(seqs))
		for i := range seqs {
			out[i] = strategy.RawResult{Value: 1 - slope*nfs[i%len(nfs)]}
		}

		return out, nil
	}
}

func bell(t *testing.T) circuit.Sequence {
	t.Helper()
	seq, err := circuit.Parse("h 0\ncx 0,1\nmeasure 0,1")
	require.NoError(t, err)

	return seq
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy([]float64{1, 2, 3}, amplifier.NameMultiQubit, extrapolation.NameLinear)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.NoiseFactors())
	assert.Equal(t, amplifier.NameMultiQubit, s.Amplifier().Name())
	assert.Equal(t, extrapolation.NameLinear, s.Extrapolator().Name())
	assert.True(t, s.PerformsZNE())
}

func TestNewStrategy_ParameterizedDefaults(t *testing.T) {
	s, err := NewStrategy([]float64{1, 3}, amplifier.NameGlobal, extrapolation.NamePolynomial)
	require.NoError(t, err)
	poly, ok := s.Extrapolator().(*extrapolation.Polynomial)
	require.True(t, ok)
	assert.Equal(t, 1, poly.Degree())

	s, err = NewStrategy([]float64{1, 3, 5}, amplifier.NameGlobal, extrapolation.NameMultiExponential)
	require.NoError(t, err)
	exp, ok := s.Extrapolator().(*extrapolation.MultiExponential)
	require.True(t, ok)
	assert.Equal(t, 1, exp.NumTerms())
}

func TestNewStrategy_WithOptions(t *testing.T) {
	s, err := NewStrategy([]float64{1, 3}, amplifier.NameCX, extrapolation.NameLinear, strategy.WithConcurrency(4))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, s.NoiseFactors())
	assert.Equal(t, amplifier.NameCX, s.Amplifier().Name())
}

func TestNewStrategy_Errors(t *testing.T) {
	_, err := NewStrategy([]float64{1, 2}, "no_such_amplifier", extrapolation.NameLinear)
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	_, err = NewStrategy([]float64{1, 2}, amplifier.NameGlobal, "no_such_model")
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	_, err = NewStrategy([]float64{0.5}, amplifier.NameGlobal, extrapolation.NameLinear)
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	s, err := NewStrategy([]float64{1, 2, 3}, amplifier.NameMultiQubit, extrapolation.NameLinear)
	require.NoError(t, err)

	results, err := Run(context.Background(), s, linearBackend(s, 0.1), []circuit.Sequence{bell(t), bell(t)})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.InDelta(t, 1.0, r.Value, 1e-9)
		assert.Equal(t, []float64{1, 2, 3}, r.Metadata.NoiseAmplification.NoiseFactors)
	}
}

func TestRun_NilExecutor(t *testing.T) {
	s, err := NewStrategy([]float64{1, 3}, amplifier.NameGlobal, extrapolation.NameLinear)
	require.NoError(t, err)

	_, err = Run(context.Background(), s, nil, []circuit.Sequence{bell(t)})
	require.ErrorIs(t, err, errs.ErrNilComponent)
}

func TestLoadStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	doc := "noise_factors: [1, 3, 5]\namplifier:\n  name: local\n  operations_to_fold: [cx]\nextrapolator:\n  name: polynomial\n  degree: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	s, err := LoadStrategy(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5}, s.NoiseFactors())
	assert.Equal(t, amplifier.NameLocal, s.Amplifier().Name())
	assert.Equal(t, []string{"cx"}, s.Amplifier().Options().FoldNames)

	_, err = LoadStrategy(filepath.Join(t.TempDir(), "missing.toml"), nil)
	require.Error(t, err)
}
