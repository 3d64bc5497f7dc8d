package amplifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/errs"
)

func TestGlobalFolding_FullFolding(t *testing.T) {
	seq := fourOps()
	g := mustGlobal(t, WithBarriers(false))

	out, err := g.Amplify(seq, 3)
	require.NoError(t, err)
	require.Equal(t, 12, out.Len())

	want := seq.Compose(seq.Inverse()).Compose(seq)
	require.True(t, want.Equal(out), "got %s", out)
}

func TestGlobalFolding_Barriers(t *testing.T) {
	seq := fourOps()
	g := mustGlobal(t)

	out, err := g.Amplify(seq, 3)
	require.NoError(t, err)
	require.Equal(t, 15, out.Len())

	for _, pos := range []int{4, 9, 14} {
		op := out.At(pos)
		require.True(t, op.IsBarrier(), "position %d", pos)
		require.Equal(t, []int{0, 1}, op.Sites())
	}
	require.Equal(t, 12, out.CountIf(func(op circuit.Operation) bool { return !op.IsMarker() }))
}

func TestGlobalFolding_NoiseFactorOne(t *testing.T) {
	seq := fourOps()

	out, err := mustGlobal(t, WithBarriers(false)).Amplify(seq, 1)
	require.NoError(t, err)
	require.True(t, seq.Equal(out))

	out, err = mustGlobal(t).Amplify(seq, 1)
	require.NoError(t, err)
	require.Equal(t, seq.Len()+1, out.Len())
	require.True(t, circuit.Equivalent(seq, out))
}

func TestGlobalFolding_SubFolding(t *testing.T) {
	seq := fourOps()
	h, s, cx, tg := seq.At(0), seq.At(1), seq.At(2), seq.At(3)

	tests := []struct {
		name string
		opts []Option
		tail []circuit.Operation
	}{
		{
			name: "from_first",
			opts: []Option{WithSubFoldingOption(FromFirst)},
			tail: []circuit.Operation{s.Inverse(), h.Inverse(), h, s},
		},
		{
			name: "from_last",
			opts: []Option{WithSubFoldingOption(FromLast)},
			tail: []circuit.Operation{tg.Inverse(), cx.Inverse(), cx, tg},
		},
		{
			name: "random",
			opts: []Option{WithSubFoldingOption(Random), WithRandomSource(fixedSource{1, 3})},
			tail: []circuit.Operation{tg.Inverse(), s.Inverse(), s, tg},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGlobal(t, append(tt.opts, WithBarriers(false))...)

			out, err := g.Amplify(seq, 2)
			require.NoError(t, err)

			want := circuit.MustNew(2, append(seq.Ops(), tt.tail...)...)
			require.True(t, want.Equal(out), "got %s", out)
		})
	}
}

func TestGlobalFolding_SubFoldingFollowsLastBarrier(t *testing.T) {
	seq := fourOps()
	out, err := mustGlobal(t).Amplify(seq, 3.5)
	require.NoError(t, err)

	// 3 blocks of 4 ops + 3 barriers, then inverse(subset) + subset.
	require.Equal(t, 3*5+2, out.Len())
	require.True(t, out.At(14).IsBarrier())
	require.Equal(t, "h", out.At(15).Name())
	require.Equal(t, "h", out.At(16).Name())
}

func TestGlobalFolding_RandomSeedReproducible(t *testing.T) {
	seq := circuit.MustNew(1,
		circuit.Op("x", 0), circuit.Op("y", 0), circuit.Op("z", 0),
		circuit.Op("h", 0), circuit.Op("s", 0), circuit.Op("t", 0),
	)

	a := mustGlobal(t, WithSubFoldingOption(Random), WithRandomSeed(11))
	b := mustGlobal(t, WithSubFoldingOption(Random), WithRandomSeed(11))

	for _, nf := range []float64{1.4, 1.7, 2, 2.4} {
		outA, err := a.Amplify(seq, nf)
		require.NoError(t, err)
		outB, err := b.Amplify(seq, nf)
		require.NoError(t, err)
		require.True(t, outA.Equal(outB), "nf=%v", nf)
	}
}

func TestGlobalFolding_EmptySequence(t *testing.T) {
	logger, logs := observedLogger()
	g, err := NewGlobalFolding(WithLogger(logger), WithBarriers(false))
	require.NoError(t, err)

	out, err := g.Amplify(circuit.Sequence{}, 3)
	require.NoError(t, err)
	require.Zero(t, out.Len())
	require.Equal(t, 1, logs.FilterMessage("nothing to fold").Len())
}

func TestGlobalFolding_RejectsFoldSet(t *testing.T) {
	_, err := NewGlobalFolding(WithOperationsToFold("cx"))
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}
