package config

import (
	"strings"

	"go.uber.org/zap"

	"github.com/arloliu/zne/amplifier"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/strategy"
)

// Build validates c and constructs the strategy it describes. logger, if not
// nil, is handed to the strategy, the amplifier and the extrapolator.
func (c StrategyConfig) Build(logger *zap.Logger) (*strategy.Strategy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	amp, err := c.Amplifier.build(logger)
	if err != nil {
		return nil, err
	}

	ex, err := c.Extrapolator.build(logger)
	if err != nil {
		return nil, err
	}

	opts := []strategy.Option{
		strategy.WithNoiseFactors(c.NoiseFactors...),
		strategy.WithAmplifier(amp),
		strategy.WithExtrapolator(ex),
		strategy.WithLogger(logger),
	}
	if c.Concurrency > 0 {
		opts = append(opts, strategy.WithConcurrency(c.Concurrency))
	}
	if c.Cache.Capacity > 0 {
		opts = append(opts, strategy.WithCacheCapacity(c.Cache.Capacity))
	}
	if c.Cache.Policy != "" {
		policy, err := strategy.ParseCachePolicy(c.Cache.Policy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, strategy.WithCachePolicy(policy))
	}

	return strategy.New(opts...)
}

func (a AmplifierConfig) build(logger *zap.Logger) (amplifier.Amplifier, error) {
	opts := []amplifier.Option{amplifier.WithLogger(logger)}

	if a.SubFolding != "" {
		sub, err := amplifier.ParseSubFoldingOption(a.SubFolding)
		if err != nil {
			return nil, err
		}
		opts = append(opts, amplifier.WithSubFoldingOption(sub))
	}
	if a.Barriers != nil {
		opts = append(opts, amplifier.WithBarriers(*a.Barriers))
	}
	if a.RandomSeed != nil {
		opts = append(opts, amplifier.WithRandomSeed(*a.RandomSeed))
	}
	if a.NoiseFactorRelativeTolerance != nil {
		opts = append(opts, amplifier.WithNoiseFactorRelativeTolerance(*a.NoiseFactorRelativeTolerance))
	}
	if a.WarnUser != nil {
		opts = append(opts, amplifier.WithWarnUser(*a.WarnUser))
	}
	if len(a.OperationsToFold) > 0 {
		opts = append(opts, amplifier.WithOperationsToFold(a.OperationsToFold...))
	}
	if len(a.Arities) > 0 {
		opts = append(opts, amplifier.WithArities(a.Arities...))
	}

	return amplifier.New(a.Name, opts...)
}

func (e ExtrapolatorConfig) build(logger *zap.Logger) (extrapolation.Extrapolator, error) {
	param := e.Degree
	if strings.EqualFold(strings.TrimSpace(e.Name), extrapolation.NameMultiExponential) {
		param = e.NumTerms
	}

	return extrapolation.New(e.Name, param, extrapolation.WithLogger(logger))
}

// FromStrategy describes an existing strategy as a configuration.
//
// Only settings visible through the amplifier and extrapolator interfaces are
// captured; cache and concurrency settings keep their zero values.
func FromStrategy(s *strategy.Strategy) StrategyConfig {
	amp := s.Amplifier()
	o := amp.Options()

	cfg := StrategyConfig{
		NoiseFactors: s.NoiseFactors(),
		Amplifier: AmplifierConfig{
			Name:                         amp.Name(),
			SubFolding:                   o.SubFolding.String(),
			Barriers:                     Ptr(o.Barriers),
			RandomSeed:                   clonePtr(o.RandomSeed),
			NoiseFactorRelativeTolerance: Ptr(o.NoiseFactorRelativeTolerance),
			WarnUser:                     Ptr(o.WarnUser),
		},
		Extrapolator: ExtrapolatorConfig{Name: s.Extrapolator().Name()},
	}

	// Facade amplifiers carry their fold set implicitly.
	if amp.Name() == amplifier.NameLocal {
		cfg.Amplifier.OperationsToFold = o.FoldNames
		cfg.Amplifier.Arities = o.FoldArities
	}

	switch ex := s.Extrapolator().(type) {
	case *extrapolation.Polynomial:
		if ex.Name() == extrapolation.NamePolynomial {
			cfg.Extrapolator.Degree = ex.Degree()
		}
	case *extrapolation.MultiExponential:
		if ex.Name() == extrapolation.NameMultiExponential {
			cfg.Extrapolator.NumTerms = ex.NumTerms()
		}
	}

	return cfg
}
