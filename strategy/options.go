package strategy

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/zne/amplifier"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/internal/cache"
	"github.com/arloliu/zne/internal/options"
)

// CachePolicy selects how a full amplification cache treats new entries.
type CachePolicy = cache.Policy

const (
	// CachePolicyLRU evicts the least recently used amplification.
	CachePolicyLRU = cache.PolicyLRU
	// CachePolicyInsertOnly stops caching once the capacity is reached.
	CachePolicyInsertOnly = cache.PolicyInsertOnly
)

// DefaultCacheCapacity is the default number of memoized amplifications.
const DefaultCacheCapacity = cache.DefaultCapacity

// ParseCachePolicy converts "lru" or "insert_only" to a CachePolicy.
func ParseCachePolicy(name string) (CachePolicy, error) {
	p, err := cache.ParsePolicy(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrUnknownName, err)
	}

	return p, nil
}

type config struct {
	noiseFactors  []float64
	amplifier     amplifier.Amplifier
	extrapolator  extrapolation.Extrapolator
	logger        *zap.Logger
	concurrency   int
	cacheCapacity int
	cachePolicy   CachePolicy
}

// Option configures a Strategy.
type Option = options.Option[*config]

// WithNoiseFactors sets the noise factors. They are validated and normalized
// like SetNoiseFactors.
func WithNoiseFactors(noiseFactors ...float64) Option {
	return options.NoError(func(c *config) {
		c.noiseFactors = append([]float64{}, noiseFactors...)
	})
}

// WithAmplifier sets the noise amplifier.
func WithAmplifier(amp amplifier.Amplifier) Option {
	return options.New(func(c *config) error {
		if amp == nil {
			return fmt.Errorf("%w: amplifier", errs.ErrNilComponent)
		}
		c.amplifier = amp

		return nil
	})
}

// WithExtrapolator sets the extrapolator.
func WithExtrapolator(ex extrapolation.Extrapolator) Option {
	return options.New(func(c *config) error {
		if ex == nil {
			return fmt.Errorf("%w: extrapolator", errs.ErrNilComponent)
		}
		c.extrapolator = ex

		return nil
	})
}

// WithLogger sets the logger receiving normalization and cache warnings.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = logger
	})
}

// WithConcurrency bounds the number of goroutines used by BuildNoisyVariants
// and Mitigate. The default of 1 runs everything on the calling goroutine.
func WithConcurrency(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: concurrency must be >= 1, got %d", errs.ErrInvalidValue, n)
		}
		c.concurrency = n

		return nil
	})
}

// WithCacheCapacity sets the number of amplified sequences kept in memory.
func WithCacheCapacity(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: cache capacity must be >= 1, got %d", errs.ErrInvalidValue, n)
		}
		c.cacheCapacity = n

		return nil
	})
}

// WithCachePolicy sets the amplification cache policy.
func WithCachePolicy(policy CachePolicy) Option {
	return options.New(func(c *config) error {
		if policy != CachePolicyLRU && policy != CachePolicyInsertOnly {
			return fmt.Errorf("%w: cache policy %d", errs.ErrInvalidValue, policy)
		}
		c.cachePolicy = policy

		return nil
	})
}
