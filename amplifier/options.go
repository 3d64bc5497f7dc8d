package amplifier

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/internal/options"
)

// DefaultNoiseFactorRelativeTolerance is the relative error between requested and
// achieved noise factor above which a rounding warning is logged.
const DefaultNoiseFactorRelativeTolerance = 1e-2

// SubFoldingOption selects which units receive the extra sub-foldings.
type SubFoldingOption uint8

const (
	FromFirst SubFoldingOption = iota + 1
	FromLast
	Random
)

var subFoldingNames = map[SubFoldingOption]string{
	FromFirst: "from_first",
	FromLast:  "from_last",
	Random:    "random",
}

func (o SubFoldingOption) String() string {
	if name, ok := subFoldingNames[o]; ok {
		return name
	}

	return "unknown"
}

// ParseSubFoldingOption converts "from_first", "from_last" or "random" to a SubFoldingOption.
func ParseSubFoldingOption(name string) (SubFoldingOption, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for opt, n := range subFoldingNames {
		if n == name {
			return opt, nil
		}
	}

	return 0, fmt.Errorf("%w: sub-folding option %q", errs.ErrUnknownName, name)
}

// Options holds the comparable settings of a folding amplifier.
type Options struct {
	SubFolding                   SubFoldingOption
	Barriers                     bool
	RandomSeed                   *uint64
	NoiseFactorRelativeTolerance float64
	WarnUser                     bool
	// FoldNames and FoldArities restrict local folding. Both empty folds every
	// operation except markers.
	FoldNames   []string
	FoldArities []int
}

// DefaultOptions returns the settings used when no option is given.
func DefaultOptions() Options {
	return Options{
		SubFolding:                   FromFirst,
		Barriers:                     true,
		NoiseFactorRelativeTolerance: DefaultNoiseFactorRelativeTolerance,
		WarnUser:                     true,
	}
}

// Equal compares options field by field.
func (o Options) Equal(other Options) bool {
	seedEqual := (o.RandomSeed == nil) == (other.RandomSeed == nil) &&
		(o.RandomSeed == nil || *o.RandomSeed == *other.RandomSeed)

	return seedEqual &&
		o.SubFolding == other.SubFolding &&
		o.Barriers == other.Barriers &&
		o.NoiseFactorRelativeTolerance == other.NoiseFactorRelativeTolerance &&
		o.WarnUser == other.WarnUser &&
		slices.Equal(o.FoldNames, other.FoldNames) &&
		slices.Equal(o.FoldArities, other.FoldArities)
}

// With returns a copy of o with opts applied on top. Logger and random source
// options are accepted but have no effect on the returned value.
func (o Options) With(opts ...Option) (Options, error) {
	cfg := &config{opts: o.clone()}
	if err := options.Validated(cfg, (*config).validate, opts...); err != nil {
		return Options{}, err
	}

	return cfg.opts, nil
}

// HasFoldSet reports whether local folding is restricted to a fold set.
func (o Options) HasFoldSet() bool {
	return len(o.FoldNames) > 0 || len(o.FoldArities) > 0
}

func (o Options) clone() Options {
	out := o
	if o.RandomSeed != nil {
		seed := *o.RandomSeed
		out.RandomSeed = &seed
	}
	out.FoldNames = slices.Clone(o.FoldNames)
	out.FoldArities = slices.Clone(o.FoldArities)

	return out
}

// config is the option target: comparable settings plus collaborators.
type config struct {
	opts   Options
	logger *zap.Logger
	source RandomSource
}

func (c *config) validate() error {
	if _, ok := subFoldingNames[c.opts.SubFolding]; !ok {
		return fmt.Errorf("%w: sub-folding option %d", errs.ErrInvalidValue, c.opts.SubFolding)
	}
	tol := c.opts.NoiseFactorRelativeTolerance
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return fmt.Errorf("noise factor relative tolerance: %w", errs.ErrNotFinite)
	}
	if tol < 0 {
		return fmt.Errorf("%w: negative noise factor relative tolerance %g", errs.ErrInvalidValue, tol)
	}

	return nil
}

// Option configures a folding amplifier.
type Option = options.Option[*config]

// WithSubFoldingOption selects the sub-folding policy.
func WithSubFoldingOption(opt SubFoldingOption) Option {
	return options.NoError(func(c *config) {
		c.opts.SubFolding = opt
	})
}

// WithBarriers toggles barrier insertion between folds.
func WithBarriers(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.opts.Barriers = enabled
	})
}

// WithRandomSeed seeds the generator used by Random sub-folding.
func WithRandomSeed(seed uint64) Option {
	return options.NoError(func(c *config) {
		c.opts.RandomSeed = &seed
	})
}

// WithNoiseFactorRelativeTolerance sets the rounding warning threshold.
func WithNoiseFactorRelativeTolerance(tol float64) Option {
	return options.NoError(func(c *config) {
		c.opts.NoiseFactorRelativeTolerance = tol
	})
}

// WithWarnUser enables or silences optional warnings. Noise factor rounding is
// logged regardless.
func WithWarnUser(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.opts.WarnUser = enabled
	})
}

// WithLogger sets the logger receiving warnings and debug traces.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = logger
	})
}

// WithRandomSource replaces the seeded generator. It takes precedence over WithRandomSeed.
func WithRandomSource(source RandomSource) Option {
	return options.New(func(c *config) error {
		if source == nil {
			return fmt.Errorf("random source: %w", errs.ErrNilComponent)
		}
		c.source = source

		return nil
	})
}

// WithOperationsToFold restricts local folding to operations with the given names.
// Names are matched case-insensitively; calling it again adds to the set.
func WithOperationsToFold(names ...string) Option {
	return options.New(func(c *config) error {
		for _, name := range names {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				return fmt.Errorf("%w: empty operation name in fold set", errs.ErrInvalidValue)
			}
			c.opts.FoldNames = append(c.opts.FoldNames, name)
		}
		slices.Sort(c.opts.FoldNames)
		c.opts.FoldNames = slices.Compact(c.opts.FoldNames)

		return nil
	})
}

// WithArities restricts local folding to operations acting on the given number of sites.
func WithArities(arities ...int) Option {
	return options.New(func(c *config) error {
		for _, arity := range arities {
			if arity < 1 {
				return fmt.Errorf("%w: fold set arity %d is smaller than one", errs.ErrInvalidValue, arity)
			}
			c.opts.FoldArities = append(c.opts.FoldArities, arity)
		}
		slices.Sort(c.opts.FoldArities)
		c.opts.FoldArities = slices.Compact(c.opts.FoldArities)

		return nil
	})
}

// WithOptions replaces every comparable setting with o.
func WithOptions(o Options) Option {
	return options.NoError(func(c *config) {
		c.opts = o.clone()
	})
}
