package amplifier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/errs"
)

// GlobalFolding folds the whole sequence: s, s⁻¹, s, ... repeated 2n+1 times.
//
// A fractional remainder is realized by appending inverse(subset) and subset,
// where subset holds Sub operations of the original sequence chosen by the
// sub-folding policy.
type GlobalFolding struct {
	*folder
}

var _ Amplifier = (*GlobalFolding)(nil)

// NewGlobalFolding creates a global folding amplifier.
func NewGlobalFolding(opts ...Option) (*GlobalFolding, error) {
	f, err := newFolder(NameGlobal, opts)
	if err != nil {
		return nil, err
	}
	if f.opts.HasFoldSet() {
		return nil, fmt.Errorf("%w: fold sets apply to local folding only", errs.ErrInvalidValue)
	}

	return &GlobalFolding{folder: f}, nil
}

// Amplify returns the globally folded sequence.
//
// With barriers enabled, a barrier over every site follows each full block.
func (g *GlobalFolding) Amplify(seq circuit.Sequence, noiseFactor float64) (circuit.Sequence, error) {
	if err := validateNoiseFactor(noiseFactor); err != nil {
		return circuit.Sequence{}, err
	}

	plan := g.ComputeFoldingPlan(noiseFactor, seq.Len())
	blocks := 2*plan.Full + 1

	b := circuit.NewBuilder(seq.NumSites(), blocks*(seq.Len()+1)+2*plan.Sub)
	inverse := seq.Inverse()
	for i := range blocks {
		if i%2 == 0 {
			b.Compose(seq)
		} else {
			b.Compose(inverse)
		}
		g.barrier(b)
	}

	if plan.Sub > 0 {
		subset := seq.Pick(g.selectSubFoldings(seq.Len(), plan.Sub))
		b.Compose(subset.Inverse()).Compose(subset)
	}

	out := b.Build()
	g.logger.Debug("global folding applied",
		zap.Float64("noise_factor", noiseFactor),
		zap.Int("full", plan.Full),
		zap.Int("sub", plan.Sub),
		zap.Int("ops", out.Len()),
	)

	return out, nil
}
