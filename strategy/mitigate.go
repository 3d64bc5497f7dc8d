package strategy

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/zne/amplifier"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/extrapolation"
)

// VarianceKey is the raw result metadata field holding the measurement variance.
const VarianceKey = "variance"

// RawResult is the measured value of one executed variant.
//
// Metadata is optional. Its VarianceKey entry, when present, is the variance
// of Value; every other field is carried into the mitigation metadata.
type RawResult struct {
	Value    float64
	Metadata map[string]any
}

// MitigatedResult is the extrapolated value of one original sequence.
type MitigatedResult struct {
	Value    float64
	StdError float64
	Metadata ZNEMetadata
}

// MetadataMap returns the result metadata in its nested form:
// {"std_error": ..., "zne": {...}}.
func (r MitigatedResult) MetadataMap() map[string]any {
	return map[string]any{
		"std_error": r.StdError,
		"zne":       r.Metadata.Map(),
	}
}

// ZNEMetadata describes how a mitigated value was obtained.
type ZNEMetadata struct {
	NoiseAmplification NoiseAmplificationMetadata
	Extrapolation      ExtrapolationMetadata
}

// Map exposes the metadata under the keys "noise_amplification" and
// "extrapolation".
func (m ZNEMetadata) Map() map[string]any {
	return map[string]any{
		"noise_amplification": m.NoiseAmplification.Map(),
		"extrapolation":       m.Extrapolation.Map(),
	}
}

// NoiseAmplificationMetadata holds the per-noise-factor inputs of one fit.
type NoiseAmplificationMetadata struct {
	Amplifier    amplifier.Amplifier
	NoiseFactors []float64
	Values       []float64
	// Fields holds every metadata field found in the group, one entry per
	// noise factor, nil where a raw result lacks the field.
	Fields map[string][]any
}

// Map flattens the metadata, merging Fields next to the fixed keys. A field
// named like a fixed key replaces it.
func (m NoiseAmplificationMetadata) Map() map[string]any {
	out := make(map[string]any, len(m.Fields)+3)
	out["noise_amplifier"] = m.Amplifier
	out["noise_factors"] = slices.Clone(m.NoiseFactors)
	out["values"] = slices.Clone(m.Values)
	for k, v := range m.Fields {
		out[k] = slices.Clone(v)
	}

	return out
}

// FieldNames returns the sorted names of the broadcast metadata fields.
func (m NoiseAmplificationMetadata) FieldNames() []string {
	return slices.Sorted(maps.Keys(m.Fields))
}

// ExtrapolationMetadata holds the extrapolator and its fit diagnostics.
type ExtrapolationMetadata struct {
	Extrapolator extrapolation.Extrapolator
	Fit          extrapolation.Metadata
}

// Map flattens the fit diagnostics next to the "extrapolator" key.
func (m ExtrapolationMetadata) Map() map[string]any {
	out := m.Fit.Map()
	out["extrapolator"] = m.Extrapolator

	return out
}

// GroupResults splits raw results into consecutive groups of NumNoiseFactors
// entries, one group per original sequence.
// Returns an error wrapping errs.ErrResultCount if the count does not divide.
func (s *Strategy) GroupResults(raw []RawResult) ([][]RawResult, error) {
	k := s.NumNoiseFactors()
	if len(raw)%k != 0 {
		return nil, fmt.Errorf("%w: %d results for %d noise factors", errs.ErrResultCount, len(raw), k)
	}

	return slices.Collect(slices.Chunk(raw, k)), nil
}

// RegressionData builds the extrapolation input of one group: x are the noise
// factors, y the values, sigma_x ones and sigma_y the square root of each
// variance (one when absent).
func (s *Strategy) RegressionData(group []RawResult) (extrapolation.Data, error) {
	k := s.NumNoiseFactors()
	if len(group) != k {
		return extrapolation.Data{}, fmt.Errorf("%w: group of %d results for %d noise factors",
			errs.ErrResultCount, len(group), k)
	}

	data := extrapolation.Data{
		X:      slices.Clone(s.noiseFactors),
		Y:      make([]float64, k),
		SigmaX: make([]float64, k),
		SigmaY: make([]float64, k),
	}
	for i, r := range group {
		variance, err := varianceOf(r)
		if err != nil {
			return extrapolation.Data{}, fmt.Errorf("result %d: %w", i, err)
		}
		data.Y[i] = r.Value
		data.SigmaX[i] = 1
		data.SigmaY[i] = math.Sqrt(variance)
	}

	return data, nil
}

func varianceOf(r RawResult) (float64, error) {
	v, ok := r.Metadata[VarianceKey]
	if !ok || v == nil {
		return 1, nil
	}

	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%w: variance of type %T", errs.ErrInvalidType, v)
	}
}

// Mitigate extrapolates every group of raw results to the zero-noise limit.
//
// raw must be laid out like the output of BuildNoisyVariants. Groups are fitted
// in parallel up to the configured concurrency; the output order follows the
// original sequences. A solver failure in any group fails the whole call.
func (s *Strategy) Mitigate(ctx context.Context, raw []RawResult) ([]MitigatedResult, error) {
	groups, err := s.GroupResults(raw)
	if err != nil {
		return nil, err
	}

	out := make([]MitigatedResult, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, group := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.mitigateGroup(group)
			if err != nil {
				return fmt.Errorf("group %d: %w", i, err)
			}
			out[i] = res

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("mitigated results",
		zap.Int("groups", len(groups)),
		zap.Float64s("noise_factors", s.noiseFactors),
	)

	return out, nil
}

func (s *Strategy) mitigateGroup(group []RawResult) (MitigatedResult, error) {
	data, err := s.RegressionData(group)
	if err != nil {
		return MitigatedResult{}, err
	}

	res, err := extrapolation.ExtrapolateData(s.extrapolator, data)
	if err != nil {
		return MitigatedResult{}, err
	}

	return MitigatedResult{
		Value:    res.Value,
		StdError: res.StdError,
		Metadata: ZNEMetadata{
			NoiseAmplification: NoiseAmplificationMetadata{
				Amplifier:    s.amplifier,
				NoiseFactors: slices.Clone(s.noiseFactors),
				Values:       slices.Clone(data.Y),
				Fields:       broadcastFields(group),
			},
			Extrapolation: ExtrapolationMetadata{
				Extrapolator: s.extrapolator,
				Fit:          res.Metadata,
			},
		},
	}, nil
}

// broadcastFields collects every metadata field present in the group into a
// per-result column, filling nil where a result lacks the field.
func broadcastFields(group []RawResult) map[string][]any {
	fields := make(map[string][]any)
	for i, r := range group {
		for name, v := range r.Metadata {
			col, ok := fields[name]
			if !ok {
				col = make([]any, len(group))
				fields[name] = col
			}
			col[i] = v
		}
	}

	return fields
}
