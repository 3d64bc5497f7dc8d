package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/zne/amplifier"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/strategy"
)

const yamlDoc = `
noise_factors: [5, 1, 3]
amplifier:
  name: local
  sub_folding: from_last
  barriers: false
  random_seed: 42
  noise_factor_relative_tolerance: 0.05
  operations_to_fold: [CX, cz]
extrapolator:
  name: polynomial
  degree: 2
concurrency: 4
cache:
  capacity: 16
  policy: insert_only
`

const tomlDoc = `
noise_factors = [5.0, 1.0, 3.0]
concurrency = 4

[amplifier]
name = "local"
sub_folding = "from_last"
barriers = false
random_seed = 42
noise_factor_relative_tolerance = 0.05
operations_to_fold = ["CX", "cz"]

[extrapolator]
name = "polynomial"
degree = 2

[cache]
capacity = 16
policy = "insert_only"
`

func TestParse_YAMLAndTOMLAgree(t *testing.T) {
	fromYAML, err := Parse([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)
	fromTOML, err := Parse([]byte(tomlDoc), FormatTOML)
	require.NoError(t, err)

	assert.True(t, fromYAML.Equal(fromTOML))
	assert.Equal(t, []float64{5, 1, 3}, fromYAML.NoiseFactors)
	require.NotNil(t, fromYAML.Amplifier.RandomSeed)
	assert.Equal(t, uint64(42), *fromYAML.Amplifier.RandomSeed)
	require.NotNil(t, fromYAML.Amplifier.Barriers)
	assert.False(t, *fromYAML.Amplifier.Barriers)
	assert.Nil(t, fromYAML.Amplifier.WarnUser)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format Format
	}{
		{"empty", "", FormatYAML},
		{"unknown yaml key", "noise_factors: [1]\namplifier: {name: global}\nextrapolator: {name: linear}\nfoo: 1\n", FormatYAML},
		{"unknown toml key", "noise_factors = [1.0]\nfoo = 1\n[amplifier]\nname = \"global\"\n[extrapolator]\nname = \"linear\"\n", FormatTOML},
		{"missing noise factors", "amplifier: {name: global}\nextrapolator: {name: linear}\n", FormatYAML},
		{"noise factor below one", "noise_factors: [0.5]\namplifier: {name: global}\nextrapolator: {name: linear}\n", FormatYAML},
		{"unknown amplifier", "noise_factors: [1]\namplifier: {name: zigzag}\nextrapolator: {name: linear}\n", FormatYAML},
		{"unknown extrapolator", "noise_factors: [1]\namplifier: {name: global}\nextrapolator: {name: spline}\n", FormatYAML},
		{"bad sub folding", "noise_factors: [1]\namplifier: {name: global, sub_folding: middle}\nextrapolator: {name: linear}\n", FormatYAML},
		{"polynomial without degree", "noise_factors: [1]\namplifier: {name: global}\nextrapolator: {name: polynomial}\n", FormatYAML},
		{"multi exponential without terms", "noise_factors: [1]\namplifier: {name: global}\nextrapolator: {name: multi_exponential}\n", FormatYAML},
		{"global with fold set", "noise_factors: [1]\namplifier: {name: global, arities: [2]}\nextrapolator: {name: linear}\n", FormatYAML},
		{"zero arity", "noise_factors: [1]\namplifier: {name: local, arities: [0]}\nextrapolator: {name: linear}\n", FormatYAML},
		{"bad cache policy", "noise_factors: [1]\namplifier: {name: global}\nextrapolator: {name: linear}\ncache: {policy: fifo}\n", FormatYAML},
		{"malformed toml", "noise_factors = [", FormatTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.format)
			require.ErrorIs(t, err, errs.ErrInvalidValue)
		})
	}

	_, err := Parse([]byte(yamlDoc), Format(9))
	require.ErrorIs(t, err, errs.ErrUnknownName)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "strategy.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDoc), 0o600))
	tomlPath := filepath.Join(dir, "strategy.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlDoc), 0o600))

	a, err := Load(yamlPath)
	require.NoError(t, err)
	b, err := Load(tomlPath)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	_, err = Load(filepath.Join(dir, "strategy.json"))
	require.ErrorIs(t, err, errs.ErrUnknownName)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuild(t *testing.T) {
	cfg, err := Parse([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)

	s, err := cfg.Build(nil)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 3, 5}, s.NoiseFactors())
	assert.True(t, s.PerformsZNE())

	amp := s.Amplifier()
	assert.Equal(t, amplifier.NameLocal, amp.Name())
	assert.Equal(t, amplifier.FromLast, amp.Options().SubFolding)
	assert.False(t, amp.Options().Barriers)
	assert.Equal(t, []string{"cx", "cz"}, amp.Options().FoldNames)
	assert.InDelta(t, 0.05, amp.Options().NoiseFactorRelativeTolerance, 1e-12)

	quad, err := extrapolation.NewQuadratic()
	require.NoError(t, err)
	assert.True(t, extrapolation.Equal(quad, s.Extrapolator()))

	st := s.CacheStats()
	assert.Equal(t, 16, st.Capacity)
	assert.Equal(t, strategy.CachePolicyInsertOnly, st.Policy)
}

func TestBuild_DefaultMatchesStrategyNew(t *testing.T) {
	built, err := Default().Build(nil)
	require.NoError(t, err)

	plain, err := strategy.New()
	require.NoError(t, err)
	assert.True(t, built.Equal(plain))
}

func TestFromStrategy_RoundTrip(t *testing.T) {
	configs := []StrategyConfig{
		Default(),
		Default().With(func(c *StrategyConfig) {
			c.NoiseFactors = []float64{1, 2, 3}
			c.Amplifier = AmplifierConfig{Name: "global", SubFolding: "random", RandomSeed: Ptr(uint64(3))}
			c.Extrapolator = ExtrapolatorConfig{Name: "multi_exponential", NumTerms: 1}
		}),
		Default().With(func(c *StrategyConfig) {
			c.NoiseFactors = []float64{1, 3}
			c.Amplifier = AmplifierConfig{Name: "cx"}
			c.Extrapolator = ExtrapolatorConfig{Name: "cubic"}
		}),
		Default().With(func(c *StrategyConfig) {
			c.Amplifier = AmplifierConfig{Name: "local", Arities: []int{3, 2}}
			c.Extrapolator = ExtrapolatorConfig{Name: "polynomial", Degree: 3}
		}),
	}

	for _, cfg := range configs {
		s, err := cfg.Build(nil)
		require.NoError(t, err)

		again, err := FromStrategy(s).Build(nil)
		require.NoError(t, err)
		assert.True(t, s.Equal(again), "%s vs %s", s, again)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, cfg.Encode(&buf, format))

			decoded, err := Parse(buf.Bytes(), format)
			require.NoError(t, err)
			assert.True(t, cfg.Equal(decoded), "encoded:\n%s", buf.String())
		})
	}
}

func TestWith_DoesNotAlias(t *testing.T) {
	base := Default().With(func(c *StrategyConfig) {
		c.Amplifier.Barriers = Ptr(true)
	})
	derived := base.With(func(c *StrategyConfig) {
		c.NoiseFactors[0] = 3
		*c.Amplifier.Barriers = false
	})

	assert.Equal(t, []float64{1}, base.NoiseFactors)
	assert.True(t, *base.Amplifier.Barriers)
	assert.Equal(t, []float64{3}, derived.NoiseFactors)
	assert.False(t, base.Equal(derived))
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.yaml": FormatYAML,
		"b.YML":  FormatYAML,
		"c.toml": FormatTOML,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
}
