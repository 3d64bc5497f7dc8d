// Package config loads declarative strategy configurations from YAML or TOML
// and builds them into strategies.
//
// A minimal YAML document:
//
//	noise_factors: [1, 3, 5]
//	amplifier:
//	  name: local
//	  operations_to_fold: [cx]
//	extrapolator:
//	  name: polynomial
//	  degree: 2
package config

import (
	"slices"

	"github.com/google/go-cmp/cmp"
)

// StrategyConfig is the declarative form of a strategy.
type StrategyConfig struct {
	NoiseFactors []float64          `yaml:"noise_factors" toml:"noise_factors" validate:"required,min=1,dive,gte=1"`
	Amplifier    AmplifierConfig    `yaml:"amplifier" toml:"amplifier"`
	Extrapolator ExtrapolatorConfig `yaml:"extrapolator" toml:"extrapolator"`
	// Concurrency bounds parallel amplification and extrapolation; 0 means sequential.
	Concurrency int         `yaml:"concurrency,omitempty" toml:"concurrency,omitempty" validate:"gte=0"`
	Cache       CacheConfig `yaml:"cache,omitempty" toml:"cache,omitempty"`
}

// AmplifierConfig selects and configures a folding amplifier. Nil pointer
// fields keep the amplifier defaults.
type AmplifierConfig struct {
	Name                         string   `yaml:"name" toml:"name" validate:"required,amplifier_name"`
	SubFolding                   string   `yaml:"sub_folding,omitempty" toml:"sub_folding,omitempty" validate:"omitempty,oneof=from_first from_last random"`
	Barriers                     *bool    `yaml:"barriers,omitempty" toml:"barriers,omitempty"`
	RandomSeed                   *uint64  `yaml:"random_seed,omitempty" toml:"random_seed,omitempty"`
	NoiseFactorRelativeTolerance *float64 `yaml:"noise_factor_relative_tolerance,omitempty" toml:"noise_factor_relative_tolerance,omitempty" validate:"omitempty,gte=0"`
	WarnUser                     *bool    `yaml:"warn_user,omitempty" toml:"warn_user,omitempty"`
	OperationsToFold             []string `yaml:"operations_to_fold,omitempty" toml:"operations_to_fold,omitempty" validate:"dive,required"`
	Arities                      []int    `yaml:"arities,omitempty" toml:"arities,omitempty" validate:"dive,min=1"`
}

// ExtrapolatorConfig selects and configures an extrapolator. Degree is
// required by "polynomial", NumTerms by "multi_exponential".
type ExtrapolatorConfig struct {
	Name     string `yaml:"name" toml:"name" validate:"required,extrapolator_name"`
	Degree   int    `yaml:"degree,omitempty" toml:"degree,omitempty" validate:"gte=0"`
	NumTerms int    `yaml:"num_terms,omitempty" toml:"num_terms,omitempty" validate:"gte=0"`
}

// CacheConfig sizes the amplification cache; zero values keep the defaults.
type CacheConfig struct {
	Capacity int    `yaml:"capacity,omitempty" toml:"capacity,omitempty" validate:"gte=0"`
	Policy   string `yaml:"policy,omitempty" toml:"policy,omitempty" validate:"omitempty,oneof=lru insert_only"`
}

// Default returns the configuration of strategy.New without options.
func Default() StrategyConfig {
	return StrategyConfig{
		NoiseFactors: []float64{1},
		Amplifier:    AmplifierConfig{Name: "multi_qubit"},
		Extrapolator: ExtrapolatorConfig{Name: "linear"},
	}
}

// Equal compares two configurations field by field.
func (c StrategyConfig) Equal(other StrategyConfig) bool {
	return cmp.Equal(c, other)
}

// With returns a deep copy of c with overrides applied in order.
func (c StrategyConfig) With(overrides ...func(*StrategyConfig)) StrategyConfig {
	out := c.clone()
	for _, fn := range overrides {
		fn(&out)
	}

	return out
}

func (c StrategyConfig) clone() StrategyConfig {
	out := c
	out.NoiseFactors = slices.Clone(c.NoiseFactors)
	out.Amplifier.Barriers = clonePtr(c.Amplifier.Barriers)
	out.Amplifier.RandomSeed = clonePtr(c.Amplifier.RandomSeed)
	out.Amplifier.NoiseFactorRelativeTolerance = clonePtr(c.Amplifier.NoiseFactorRelativeTolerance)
	out.Amplifier.WarnUser = clonePtr(c.Amplifier.WarnUser)
	out.Amplifier.OperationsToFold = slices.Clone(c.Amplifier.OperationsToFold)
	out.Amplifier.Arities = slices.Clone(c.Amplifier.Arities)

	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p

	return &v
}

// Ptr returns a pointer to v, for filling optional fields in code.
func Ptr[T any](v T) *T {
	return &v
}
