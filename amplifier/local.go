package amplifier

import (
	"go.uber.org/zap"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/internal/pool"
)

// LocalFolding folds individual operations: op becomes op (op⁻¹ op)^k.
//
// Only foldable operations count as units. Markers are never foldable; a fold
// set built with WithOperationsToFold and WithArities further restricts folding
// to operations matching any listed name or arity.
type LocalFolding struct {
	*folder
	foldable func(circuit.Operation) bool
}

var _ Amplifier = (*LocalFolding)(nil)

// NewLocalFolding creates a local folding amplifier.
func NewLocalFolding(opts ...Option) (*LocalFolding, error) {
	return newLocal(NameLocal, nil, opts)
}

func newLocal(name string, predicate func(circuit.Operation) bool, opts []Option) (*LocalFolding, error) {
	f, err := newFolder(name, opts)
	if err != nil {
		return nil, err
	}

	for _, n := range f.opts.FoldNames {
		if !circuit.IsStandardGate(n) {
			f.warn("unknown operation name in fold set", zap.String("name", n))
		}
	}

	l := &LocalFolding{folder: f, foldable: predicate}
	if l.foldable == nil {
		l.foldable = l.inFoldSet
	}

	return l, nil
}

func (l *LocalFolding) inFoldSet(op circuit.Operation) bool {
	if !l.opts.HasFoldSet() {
		return true
	}
	for _, arity := range l.opts.FoldArities {
		if op.Arity() == arity {
			return true
		}
	}
	for _, name := range l.opts.FoldNames {
		if op.Name() == name {
			return true
		}
	}

	return false
}

// Foldable reports whether op takes part in local folding.
func (l *LocalFolding) Foldable(op circuit.Operation) bool {
	return !op.IsMarker() && l.foldable(op)
}

// FoldCounts returns the number of foldings assigned to each operation of seq.
// Non-foldable operations get zero. Random sub-folding advances the generator.
func (l *LocalFolding) FoldCounts(seq circuit.Sequence, noiseFactor float64) ([]int, error) {
	if err := validateNoiseFactor(noiseFactor); err != nil {
		return nil, err
	}

	return l.foldCounts(seq, noiseFactor), nil
}

func (l *LocalFolding) foldCounts(seq circuit.Sequence, noiseFactor float64) []int {
	mask, release := pool.GetIntSlice(seq.Len())
	defer release()

	units := 0
	for i, op := range seq.All() {
		if l.Foldable(op) {
			mask[i] = 1
			units++
		}
	}

	plan := l.ComputeFoldingPlan(noiseFactor, units)
	extra, releaseExtra := pool.GetIntSlice(units)
	defer releaseExtra()
	for _, idx := range l.selectSubFoldings(units, plan.Sub) {
		extra[idx] = 1
	}

	counts := make([]int, seq.Len())
	unit := 0
	for i := range counts {
		if mask[i] == 0 {
			continue
		}
		counts[i] = plan.Full + extra[unit]
		unit++
	}

	return counts
}

// Amplify returns the locally folded sequence.
//
// An operation folded k > 0 times expands to B op (B op⁻¹ B op)^k B where B is a
// barrier over the operation's sites (omitted when barriers are disabled).
// Operations folded zero times are copied unchanged.
func (l *LocalFolding) Amplify(seq circuit.Sequence, noiseFactor float64) (circuit.Sequence, error) {
	if err := validateNoiseFactor(noiseFactor); err != nil {
		return circuit.Sequence{}, err
	}

	counts := l.foldCounts(seq, noiseFactor)

	size := 0
	for _, k := range counts {
		size += 4*k + 2
	}
	b := circuit.NewBuilder(seq.NumSites(), size)
	for i, op := range seq.All() {
		k := counts[i]
		if k < 0 {
			panic("amplifier: negative fold count")
		}
		if k == 0 {
			b.Append(op)
			continue
		}

		sites := op.Sites()
		inverse := op.Inverse()
		l.barrier(b, sites...)
		b.Append(op)
		for range k {
			l.barrier(b, sites...)
			b.Append(inverse)
			l.barrier(b, sites...)
			b.Append(op)
		}
		l.barrier(b, sites...)
	}

	out := b.Build()
	l.logger.Debug("local folding applied",
		zap.Float64("noise_factor", noiseFactor),
		zap.Int("ops", out.Len()),
	)

	return out, nil
}
