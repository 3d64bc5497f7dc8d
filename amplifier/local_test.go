package amplifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/errs"
)

func TestLocalFolding_OnlyNamedOperation(t *testing.T) {
	seq := circuit.MustNew(2,
		circuit.Op("h", 0),
		circuit.Op("cx", 0, 1),
		circuit.Op("x", 1),
	)
	l := mustLocal(t, WithOperationsToFold("CX"), WithBarriers(false))

	out, err := l.Amplify(seq, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"h", "cx", "cx", "cx", "x"}, out.Names())
}

func TestLocalFolding_BarriersScopedToSites(t *testing.T) {
	seq := circuit.MustNew(3,
		circuit.Op("h", 0),
		circuit.Op("cx", 1, 2),
	)
	l := mustLocal(t, WithOperationsToFold("cx"))

	out, err := l.Amplify(seq, 3)
	require.NoError(t, err)

	b := circuit.Barrier(1, 2)
	cx := circuit.Op("cx", 1, 2)
	want := circuit.MustNew(3, circuit.Op("h", 0), b, cx, b, cx, b, cx, b)
	require.True(t, want.Equal(out), "got %s", out)
}

func TestLocalFolding_InverseOperations(t *testing.T) {
	seq := circuit.MustNew(1, circuit.Op("s", 0), circuit.MustOperation("rx", []int{0}, 0.5))
	l := mustLocal(t, WithBarriers(false))

	out, err := l.Amplify(seq, 5)
	require.NoError(t, err)

	s, sdg := circuit.Op("s", 0), circuit.Op("sdg", 0)
	rx := circuit.MustOperation("rx", []int{0}, 0.5)
	rxInv := circuit.MustOperation("rx", []int{0}, -0.5)
	want := circuit.MustNew(1, s, sdg, s, sdg, s, rx, rxInv, rx, rxInv, rx)
	require.True(t, want.Equal(out), "got %s", out)
}

func TestLocalFolding_MarkersNeverFold(t *testing.T) {
	seq := circuit.MustNew(2,
		circuit.Op("x", 0),
		circuit.Barrier(0, 1),
		circuit.Measure(0, 1),
	)
	l := mustLocal(t, WithBarriers(false))

	counts, err := l.FoldCounts(seq, 3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 0, 0}, counts)

	out, err := l.Amplify(seq, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "x", "x", "barrier", "measure"}, out.Names())
	require.True(t, circuit.Equivalent(seq, out))
}

func TestLocalFolding_SubFoldingDistribution(t *testing.T) {
	seq := circuit.MustNew(2,
		circuit.Op("x", 0),
		circuit.Op("h", 1),
		circuit.Op("y", 0),
		circuit.Op("z", 1),
	)

	tests := []struct {
		name string
		opts []Option
		want []int
	}{
		{"from_first", []Option{WithSubFoldingOption(FromFirst)}, []int{1, 1, 0, 0}},
		{"from_last", []Option{WithSubFoldingOption(FromLast)}, []int{0, 0, 1, 1}},
		{"random", []Option{WithSubFoldingOption(Random), WithRandomSource(fixedSource{0, 2})}, []int{1, 0, 1, 0}},
		{"fold set from_last", []Option{WithSubFoldingOption(FromLast), WithOperationsToFold("x", "z")}, []int{0, 0, 0, 1}},
		{"fold set random", []Option{WithSubFoldingOption(Random), WithOperationsToFold("x", "z"), WithRandomSource(fixedSource{1})}, []int{0, 0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mustLocal(t, tt.opts...)

			counts, err := l.FoldCounts(seq, 2)
			require.NoError(t, err)
			require.Equal(t, tt.want, counts)
		})
	}
}

func TestLocalFolding_FullPlusSub(t *testing.T) {
	seq := circuit.MustNew(1, circuit.Op("x", 0), circuit.Op("y", 0), circuit.Op("z", 0), circuit.Op("h", 0))
	l := mustLocal(t, WithSubFoldingOption(FromLast))

	counts, err := l.FoldCounts(seq, 4)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 2, 2}, counts)
}

func TestLocalFolding_NoiseFactorOne(t *testing.T) {
	seq := fourOps()

	out, err := mustLocal(t).Amplify(seq, 1)
	require.NoError(t, err)
	require.True(t, seq.Equal(out))
}

func TestLocalFolding_NothingToFold(t *testing.T) {
	logger, logs := observedLogger()
	l, err := NewLocalFolding(WithLogger(logger), WithOperationsToFold("ccx"))
	require.NoError(t, err)

	seq := fourOps()
	out, err := l.Amplify(seq, 3)
	require.NoError(t, err)
	require.True(t, seq.Equal(out))
	require.Equal(t, 1, logs.FilterMessage("nothing to fold").Len())
}

func TestLocalFolding_FoldSetValidation(t *testing.T) {
	_, err := NewLocalFolding(WithArities(0))
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	_, err = NewLocalFolding(WithOperationsToFold(" "))
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	logger, logs := observedLogger()
	l, err := NewLocalFolding(WithLogger(logger), WithOperationsToFold("mygate", "cx", "MyGate"), WithArities(2, 2, 3))
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("unknown operation name in fold set").Len())
	require.Equal(t, []string{"cx", "mygate"}, l.Options().FoldNames)
	require.Equal(t, []int{2, 3}, l.Options().FoldArities)
}

func TestFacades(t *testing.T) {
	seq := circuit.MustNew(3,
		circuit.Op("h", 0),
		circuit.Op("cx", 0, 1),
		circuit.Op("cz", 1, 2),
		circuit.Op("ccx", 0, 1, 2),
	)

	tests := []struct {
		name string
		want []int
	}{
		{NameCX, []int{0, 1, 0, 0}},
		{NameTwoQubit, []int{0, 1, 1, 0}},
		{NameMultiQubit, []int{0, 1, 1, 1}},
		{NameLocal, []int{1, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amp := mustAmp(t, tt.name)
			l, ok := amp.(*LocalFolding)
			require.True(t, ok)
			require.Equal(t, tt.name, l.Name())

			counts, err := l.FoldCounts(seq, 3)
			require.NoError(t, err)
			require.Equal(t, tt.want, counts)
		})
	}
}
