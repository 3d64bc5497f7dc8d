package amplifier

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/internal/logging"
	"github.com/arloliu/zne/internal/options"
)

// Amplifier rewrites a sequence so that executing it exhibits noiseFactor times
// the noise of the original. The input sequence is never modified.
type Amplifier interface {
	Amplify(seq circuit.Sequence, noiseFactor float64) (circuit.Sequence, error)
	Name() string
	Options() Options
}

// Equal reports whether two amplifiers have the same name and options.
func Equal(a, b Amplifier) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Name() == b.Name() && a.Options().Equal(b.Options())
}

// FoldingPlan is the number of full foldings applied to every unit and the number
// of units folded once more to approximate a fractional noise factor.
type FoldingPlan struct {
	Full int
	Sub  int
}

// FoldingToNoiseFactor returns the noise factor achieved by n full foldings: 2n+1.
//
// It panics if n is negative.
func FoldingToNoiseFactor(n int) float64 {
	if n < 0 {
		panic(fmt.Sprintf("amplifier: negative folding count %d", n))
	}

	return float64(2*n + 1)
}

// folder holds the machinery shared by global and local folding.
type folder struct {
	name   string
	opts   Options
	logger *zap.Logger
	source RandomSource
}

func newFolder(name string, opts []Option) (*folder, error) {
	cfg := &config{opts: DefaultOptions()}
	if err := options.Validated(cfg, (*config).validate, opts...); err != nil {
		return nil, err
	}

	f := &folder{
		name:   name,
		opts:   cfg.opts,
		logger: logging.OrDefault(cfg.logger, "amplifier").With(zap.String("amplifier", name)),
		source: cfg.source,
	}
	if f.source == nil {
		if f.opts.RandomSeed != nil {
			f.source = NewRandomSource(*f.opts.RandomSeed)
		} else {
			f.source = newEntropySource()
		}
	}

	return f, nil
}

// Name returns the library name of the amplifier.
func (f *folder) Name() string {
	return f.name
}

// Options returns a copy of the amplifier settings.
func (f *folder) Options() Options {
	return f.opts.clone()
}

func (f *folder) String() string {
	return fmt.Sprintf("%s(sub_folding=%s, barriers=%t)", f.name, f.opts.SubFolding, f.opts.Barriers)
}

func (f *folder) warn(msg string, fields ...zap.Field) {
	if f.opts.WarnUser {
		f.logger.Warn(msg, fields...)
	}
}

func validateNoiseFactor(noiseFactor float64) error {
	if math.IsNaN(noiseFactor) || math.IsInf(noiseFactor, 0) {
		return fmt.Errorf("noise factor %v: %w", noiseFactor, errs.ErrNotFinite)
	}
	if noiseFactor < 1 {
		return fmt.Errorf("%w: received %g", errs.ErrNoiseFactor, noiseFactor)
	}

	return nil
}

// ComputeFoldingPlan splits round(units·(noiseFactor−1)/2) foldings into full
// foldings per unit and a remainder of sub-foldings.
//
// Halves round to even. Zero units yield an empty plan and a "nothing to fold"
// warning; a plan whose achieved noise factor deviates from the request by more
// than the relative tolerance yields a rounding warning. The rounding warning is
// logged even when WarnUser is off.
func (f *folder) ComputeFoldingPlan(noiseFactor float64, units int) FoldingPlan {
	if units <= 0 {
		f.warn("nothing to fold", zap.Float64("noise_factor", noiseFactor))
		return FoldingPlan{}
	}

	foldings := int(math.RoundToEven(float64(units) * (noiseFactor - 1) / 2))
	achieved := 2*float64(foldings)/float64(units) + 1
	relErr := math.Abs(achieved-noiseFactor) / noiseFactor
	if relErr > f.opts.NoiseFactorRelativeTolerance {
		f.logger.Warn("noise factor rounded",
			zap.Float64("requested", noiseFactor),
			zap.Float64("achieved", achieved),
			zap.Float64("relative_error", relErr),
		)
	}

	return FoldingPlan{Full: foldings / units, Sub: foldings % units}
}

// selectSubFoldings returns the ascending indices in [0, n) of the k units that
// receive one extra folding.
func (f *folder) selectSubFoldings(n, k int) []int {
	if k <= 0 {
		return nil
	}
	k = min(k, n)

	switch f.opts.SubFolding {
	case FromLast:
		return indexRange(n-k, n)
	case Random:
		return f.source.Sample(n, k)
	default:
		return indexRange(0, k)
	}
}

func (f *folder) barrier(b *circuit.Builder, sites ...int) {
	if f.opts.Barriers {
		b.Barrier(sites...)
	}
}

func indexRange(from, to int) []int {
	idx := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		idx = append(idx, i)
	}

	return idx
}
