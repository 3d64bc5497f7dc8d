package strategy

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/internal/collision"
)

type cacheKey struct {
	fingerprint uint64
	noiseFactor float64
}

// CacheStats is a snapshot of the amplification cache counters.
type CacheStats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	Rejected   int64
	Collisions int
	Len        int
	Capacity   int
	Policy     CachePolicy
}

// CacheStats returns the amplification cache counters.
func (s *Strategy) CacheStats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.cache.Stats()

	return CacheStats{
		Hits:       st.Hits,
		Misses:     st.Misses,
		Evictions:  st.Evictions,
		Rejected:   st.Rejected,
		Collisions: s.tracker.Collisions(),
		Len:        st.Len,
		Capacity:   st.Capacity,
		Policy:     s.cache.Policy(),
	}
}

// ClearCache drops every memoized amplification.
func (s *Strategy) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked()
}

func (s *Strategy) purgeLocked() {
	s.cache.Purge()
	s.tracker.Reset()
	s.warnedFull = false
}

// AmplifyCircuit returns seq amplified to noiseFactor by the configured
// amplifier. Results are memoized per (fingerprint, noise factor); a hit is
// only served when the cached source sequence is structurally identical.
func (s *Strategy) AmplifyCircuit(seq circuit.Sequence, noiseFactor float64) (circuit.Sequence, error) {
	key := seq.Key()
	ck := cacheKey{fingerprint: key.Fingerprint, noiseFactor: noiseFactor}

	s.mu.Lock()
	if cached, ok := s.cache.Get(ck); ok {
		if s.tracker.Verify(key.Fingerprint, key.Canonical) {
			s.mu.Unlock()
			return cached, nil
		}
		s.warnCollision(ck)
	}
	amp := s.amplifier
	s.mu.Unlock()

	amplified, err := amp.Amplify(seq, noiseFactor)
	if err != nil {
		return circuit.Sequence{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeLocked(ck, key, amplified)

	return amplified, nil
}

func (s *Strategy) storeLocked(ck cacheKey, key circuit.Key, amplified circuit.Sequence) {
	if s.cache.Contains(ck) {
		return
	}

	if err := s.tracker.Acquire(key.Fingerprint, key.Canonical); err != nil {
		if errors.Is(err, collision.ErrCollision) {
			s.warnCollision(ck)
		}

		return
	}

	if !s.cache.Add(ck, amplified) {
		s.tracker.Release(key.Fingerprint)
		if !s.warnedFull {
			s.warnedFull = true
			s.logger.Warn("amplification cache full", zap.Int("capacity", s.cache.Capacity()))
		}
	}
}

func (s *Strategy) warnCollision(ck cacheKey) {
	s.logger.Warn("fingerprint collision",
		zap.Uint64("fingerprint", ck.fingerprint),
		zap.Float64("noise_factor", ck.noiseFactor),
	)
}

// BuildNoisyVariants amplifies every sequence at every noise factor.
//
// The result holds len(seqs)·NumNoiseFactors() sequences: the variants of
// seqs[i] occupy indices [i·k, (i+1)·k) in ascending noise factor order.
// With WithConcurrency(n > 1) amplifications run in parallel, except under
// random sub-folding, which always amplifies in input order so that a seeded
// amplifier stays reproducible.
func (s *Strategy) BuildNoisyVariants(ctx context.Context, seqs []circuit.Sequence) ([]circuit.Sequence, error) {
	k := len(s.noiseFactors)
	out := make([]circuit.Sequence, len(seqs)*k)

	if s.concurrency <= 1 || s.usesRandomSubFolding() {
		for i, seq := range seqs {
			for j, nf := range s.noiseFactors {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				amplified, err := s.AmplifyCircuit(seq, nf)
				if err != nil {
					return nil, fmt.Errorf("sequence %d, noise factor %v: %w", i, nf, err)
				}
				out[i*k+j] = amplified
			}
		}

		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, seq := range seqs {
		for j, nf := range s.noiseFactors {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				amplified, err := s.AmplifyCircuit(seq, nf)
				if err != nil {
					return fmt.Errorf("sequence %d, noise factor %v: %w", i, nf, err)
				}
				out[i*k+j] = amplified

				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// MapToNoisyVariants replicates each per-sequence argument once per noise
// factor, matching the layout of BuildNoisyVariants. A nil input maps to nil.
func MapToNoisyVariants[T any](s *Strategy, aux []T) []T {
	if aux == nil {
		return nil
	}

	k := s.NumNoiseFactors()
	out := make([]T, 0, len(aux)*k)
	for _, v := range aux {
		for range k {
			out = append(out, v)
		}
	}

	return out
}
