package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/errs"
)

// Executor runs sequences on an execution backend.
//
// It returns one raw result per sequence, in order. aux is either nil or holds
// one auxiliary argument per sequence.
type Executor interface {
	Execute(ctx context.Context, seqs []circuit.Sequence, aux []any) ([]RawResult, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, seqs []circuit.Sequence, aux []any) ([]RawResult, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, seqs []circuit.Sequence, aux []any) ([]RawResult, error) {
	return f(ctx, seqs, aux)
}

// Mitigator wraps an Executor with a Strategy: submitted sequences are
// amplified before execution and their results extrapolated afterwards.
type Mitigator struct {
	strategy *Strategy
	executor Executor
}

// NewMitigator wraps executor with s.
func NewMitigator(s *Strategy, executor Executor) (*Mitigator, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: strategy", errs.ErrNilComponent)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w: executor", errs.ErrNilComponent)
	}

	return &Mitigator{strategy: s, executor: executor}, nil
}

// Strategy returns the wrapped strategy.
func (m *Mitigator) Strategy() *Strategy {
	return m.strategy
}

// Submit amplifies seqs, replicates aux to match and starts the executor in
// the background. The returned Job yields one mitigated result per element
// of seqs.
//
// Amplification errors are returned directly; execution and extrapolation
// errors surface through Job.Result.
func (m *Mitigator) Submit(ctx context.Context, seqs []circuit.Sequence, aux []any) (*Job, error) {
	if aux != nil && len(aux) != len(seqs) {
		return nil, fmt.Errorf("%w: %d sequences, %d auxiliary arguments",
			errs.ErrLengthMismatch, len(seqs), len(aux))
	}

	s := m.strategy
	variants := seqs
	variantAux := aux
	if s.PerformsNoiseAmplification() {
		var err error
		if variants, err = s.BuildNoisyVariants(ctx, seqs); err != nil {
			return nil, err
		}
		variantAux = MapToNoisyVariants(s, aux)
	}

	job := &Job{
		id:     uuid.NewString(),
		target: len(seqs),
		done:   make(chan struct{}),
	}
	s.logger.Debug("job submitted",
		zap.String("job_id", job.id),
		zap.Int("sequences", len(seqs)),
		zap.Int("variants", len(variants)),
	)

	go func() {
		defer close(job.done)
		job.results, job.err = m.run(ctx, job, variants, variantAux)
	}()

	return job, nil
}

func (m *Mitigator) run(ctx context.Context, job *Job, variants []circuit.Sequence, aux []any) ([]MitigatedResult, error) {
	s := m.strategy

	raw, err := m.executor.Execute(ctx, variants, aux)
	if err != nil {
		return nil, fmt.Errorf("job %s: execute: %w", job.id, err)
	}

	var results []MitigatedResult
	if s.PerformsZNE() {
		if results, err = s.Mitigate(ctx, raw); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.id, err)
		}
	} else {
		results = passThrough(raw)
	}

	if len(results) != job.target {
		return nil, fmt.Errorf("%w: job %s produced %d results for %d experiments",
			errs.ErrResultCount, job.id, len(results), job.target)
	}

	return results, nil
}

// passThrough converts raw results when no extrapolation takes place.
// The standard error is the square root of the reported variance, or zero.
func passThrough(raw []RawResult) []MitigatedResult {
	out := make([]MitigatedResult, len(raw))
	for i, r := range raw {
		out[i] = MitigatedResult{Value: r.Value}
		if variance, err := varianceOf(r); err == nil && r.Metadata[VarianceKey] != nil {
			out[i].StdError = math.Sqrt(variance)
		}
	}

	return out
}

// Job is a submitted mitigation.
type Job struct {
	id      string
	target  int
	done    chan struct{}
	results []MitigatedResult
	err     error
}

// ID returns the unique job identifier.
func (j *Job) ID() string {
	return j.id
}

// NumExperiments returns the number of results the job yields.
func (j *Job) NumExperiments() int {
	return j.target
}

// Done is closed once the job finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result blocks until the job finished or ctx is done.
func (j *Job) Result(ctx context.Context) ([]MitigatedResult, error) {
	select {
	case <-j.done:
		return j.results, j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
