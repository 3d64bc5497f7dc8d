package strategy

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/arloliu/zne/amplifier"
	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/internal/cache"
	"github.com/arloliu/zne/internal/collision"
	"github.com/arloliu/zne/internal/logging"
	"github.com/arloliu/zne/internal/options"
)

// Strategy is a zero-noise extrapolation configuration together with its
// amplification cache.
//
// Setters are not meant to race with running builds; configure the strategy
// first, then share it. All build and mitigation methods are safe for
// concurrent use.
type Strategy struct {
	noiseFactors []float64
	amplifier    amplifier.Amplifier
	extrapolator extrapolation.Extrapolator
	logger       *zap.Logger
	concurrency  int

	mu         sync.Mutex
	cache      *cache.Cache[cacheKey, circuit.Sequence]
	tracker    *collision.Tracker
	warnedFull bool
}

// New creates a strategy.
//
// Defaults: noise factors {1}, a multi-qubit local folding amplifier, a linear
// extrapolator, an LRU cache of DefaultCacheCapacity entries and sequential
// execution.
func New(opts ...Option) (*Strategy, error) {
	cfg := &config{
		noiseFactors:  []float64{1},
		concurrency:   1,
		cacheCapacity: DefaultCacheCapacity,
		cachePolicy:   CachePolicyLRU,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	s := &Strategy{
		logger:      logging.OrDefault(cfg.logger, "strategy"),
		concurrency: cfg.concurrency,
		tracker:     collision.NewTracker(),
	}
	s.cache = cache.New(cfg.cacheCapacity, cfg.cachePolicy, func(key cacheKey, _ circuit.Sequence) {
		s.tracker.Release(key.fingerprint)
	})

	if err := s.SetNoiseFactors(cfg.noiseFactors); err != nil {
		return nil, err
	}

	amp := cfg.amplifier
	if amp == nil {
		var err error
		if amp, err = amplifier.NewMultiQubitAmplifier(); err != nil {
			return nil, err
		}
	}
	s.amplifier = amp

	ex := cfg.extrapolator
	if ex == nil {
		var err error
		if ex, err = extrapolation.NewLinear(); err != nil {
			return nil, err
		}
	}
	s.extrapolator = ex

	return s, nil
}

// Noop returns a strategy that performs neither amplification nor extrapolation.
func Noop() *Strategy {
	s, err := New(WithNoiseFactors(1))
	if err != nil {
		panic(err)
	}

	return s
}

// SetNoiseFactors validates and normalizes the noise factors.
//
// Factors are sorted ascending and deduplicated; a warning is logged for each
// normalization that actually changed the input.
//
// Returns an error wrapping:
//   - errs.ErrEmptyNoiseFactors for an empty list
//   - errs.ErrNotFinite for NaN or infinite values
//   - errs.ErrNoiseFactor for values below one
func (s *Strategy) SetNoiseFactors(noiseFactors []float64) error {
	if len(noiseFactors) == 0 {
		return errs.ErrEmptyNoiseFactors
	}
	for _, nf := range noiseFactors {
		if math.IsNaN(nf) || math.IsInf(nf, 0) {
			return fmt.Errorf("noise factor %v: %w", nf, errs.ErrNotFinite)
		}
		if nf < 1 {
			return fmt.Errorf("%w: got %v", errs.ErrNoiseFactor, nf)
		}
	}

	normalized := slices.Clone(noiseFactors)
	slices.Sort(normalized)
	if !slices.Equal(normalized, noiseFactors) {
		s.logger.Warn("noise factors reordered",
			zap.Float64s("requested", noiseFactors),
			zap.Float64s("normalized", normalized),
		)
	}

	sorted := len(normalized)
	normalized = slices.Compact(normalized)
	if len(normalized) != sorted {
		s.logger.Warn("duplicate noise factors removed",
			zap.Int("removed", sorted-len(normalized)),
			zap.Float64s("normalized", normalized),
		)
	}

	s.noiseFactors = slices.Clip(normalized)

	return nil
}

// SetAmplifier replaces the amplifier and drops every memoized amplification.
func (s *Strategy) SetAmplifier(amp amplifier.Amplifier) error {
	if amp == nil {
		return fmt.Errorf("%w: amplifier", errs.ErrNilComponent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.amplifier = amp
	s.purgeLocked()

	return nil
}

// SetExtrapolator replaces the extrapolator.
func (s *Strategy) SetExtrapolator(ex extrapolation.Extrapolator) error {
	if ex == nil {
		return fmt.Errorf("%w: extrapolator", errs.ErrNilComponent)
	}
	s.extrapolator = ex

	return nil
}

// NoiseFactors returns a copy of the normalized noise factors.
func (s *Strategy) NoiseFactors() []float64 {
	return slices.Clone(s.noiseFactors)
}

// Amplifier returns the configured amplifier.
func (s *Strategy) Amplifier() amplifier.Amplifier {
	return s.amplifier
}

// Extrapolator returns the configured extrapolator.
func (s *Strategy) Extrapolator() extrapolation.Extrapolator {
	return s.extrapolator
}

// NumNoiseFactors returns the number of distinct noise factors.
func (s *Strategy) NumNoiseFactors() int {
	return len(s.noiseFactors)
}

// PerformsNoiseAmplification reports whether any noise factor exceeds one.
func (s *Strategy) PerformsNoiseAmplification() bool {
	return slices.ContainsFunc(s.noiseFactors, func(nf float64) bool { return nf > 1 })
}

// PerformsZNE reports whether noise is amplified at more than one level, which
// is what extrapolation needs.
func (s *Strategy) PerformsZNE() bool {
	return s.PerformsNoiseAmplification() && s.NumNoiseFactors() > 1
}

// IsNoop reports whether the strategy leaves sequences and results untouched.
func (s *Strategy) IsNoop() bool {
	return !s.PerformsNoiseAmplification() && !s.PerformsZNE()
}

// Equal reports whether two strategies share noise factors, amplifier settings
// and extrapolation model. Cache settings are not compared.
func (s *Strategy) Equal(other *Strategy) bool {
	if s == nil || other == nil {
		return s == other
	}

	return slices.Equal(s.noiseFactors, other.noiseFactors) &&
		amplifier.Equal(s.amplifier, other.amplifier) &&
		extrapolation.Equal(s.extrapolator, other.extrapolator)
}

func (s *Strategy) String() string {
	return fmt.Sprintf("Strategy{noise_factors: %v, amplifier: %s, extrapolator: %s}",
		s.noiseFactors, s.amplifier.Name(), s.extrapolator.Name())
}

// usesRandomSubFolding reports whether amplification consumes the amplifier's
// shared random source.
func (s *Strategy) usesRandomSubFolding() bool {
	return s.amplifier.Options().SubFolding == amplifier.Random
}
