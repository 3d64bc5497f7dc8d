// Package zne implements zero-noise extrapolation for quantum-style operation
// sequences.
//
// A mitigation run has three stages:
//
//   - amplification: every input sequence is rewritten by unitary folding into
//     one noisy variant per configured noise factor (package amplifier)
//   - execution: the variants are run on a caller supplied backend
//     (strategy.Executor)
//   - extrapolation: the measured values of each group of variants are fitted
//     against their noise factors and evaluated at zero noise
//     (package extrapolation)
//
// package strategy ties the stages together and memoizes amplified variants.
// package config loads a strategy from YAML or TOML.
//
// # Basic Usage
//
//	s, _ := zne.NewStrategy([]float64{1, 2, 3}, amplifier.NameMultiQubit, extrapolation.NameLinear)
//
//	seq, _ := circuit.Parse("h 0\ncx 0,1\nmeasure 0,1")
//	results, _ := zne.Run(ctx, s, backend, []circuit.Sequence{seq})
//	fmt.Printf("%.4f ± %.4f\n", results[0].Value, results[0].StdError)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the strategy and
// config packages. For fine-grained control use those packages directly.
package zne

import (
	"context"

	"go.uber.org/zap"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/config"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/strategy"
)

// NewStrategy creates a strategy from library names.
//
// Parameters:
//   - noiseFactors: Noise factors to amplify with, each >= 1
//   - amplifierName: One of amplifier.Names()
//   - extrapolatorName: One of extrapolation.Names(); parameterized models
//     (polynomial, multi_exponential) default to one degree or term
//   - opts: Additional strategy options applied last
//
// Returns:
//   - *strategy.Strategy: The configured strategy
//   - error: Unknown names or invalid noise factors
func NewStrategy(noiseFactors []float64, amplifierName, extrapolatorName string, opts ...strategy.Option) (*strategy.Strategy, error) {
	cfg := config.Default().With(func(c *config.StrategyConfig) {
		c.NoiseFactors = noiseFactors
		c.Amplifier = config.AmplifierConfig{Name: amplifierName}
		c.Extrapolator = config.ExtrapolatorConfig{Name: extrapolatorName}
		if extrapolation.IsParameterized(extrapolatorName) {
			c.Extrapolator.Degree = 1
			c.Extrapolator.NumTerms = 1
		}
	})

	s, err := cfg.Build(nil)
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		return s, nil
	}

	return strategy.New(append([]strategy.Option{
		strategy.WithNoiseFactors(s.NoiseFactors()...),
		strategy.WithAmplifier(s.Amplifier()),
		strategy.WithExtrapolator(s.Extrapolator()),
	}, opts...)...)
}

// LoadStrategy reads a YAML or TOML strategy file and builds it.
//
// The file format is chosen by extension. A nil logger selects the global zap
// logger.
func LoadStrategy(path string, logger *zap.Logger) (*strategy.Strategy, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	return cfg.Build(logger)
}

// Run mitigates seqs on executor and waits for the results.
//
// It is a blocking shorthand for strategy.NewMitigator followed by Submit and
// Job.Result.
func Run(ctx context.Context, s *strategy.Strategy, executor strategy.Executor, seqs []circuit.Sequence) ([]strategy.MitigatedResult, error) {
	m, err := strategy.NewMitigator(s, executor)
	if err != nil {
		return nil, err
	}

	job, err := m.Submit(ctx, seqs, nil)
	if err != nil {
		return nil, err
	}

	return job.Result(ctx)
}
