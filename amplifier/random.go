package amplifier

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// RandomSource draws k distinct indices from [0, n), returned in ascending order.
//
// Implementations must be safe for concurrent use.
type RandomSource interface {
	Sample(n, k int) []int
}

// pcgSource is a mutex-guarded PCG generator. Concurrent callers are served in
// lock order, so a fixed seed and a fixed call order give fixed samples.
type pcgSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a PCG-backed RandomSource seeded with seed.
func NewRandomSource(seed uint64) RandomSource {
	return &pcgSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func newEntropySource() RandomSource {
	return NewRandomSource(rand.Uint64())
}

func (s *pcgSource) Sample(n, k int) []int {
	if k <= 0 || n <= 0 {
		return nil
	}
	k = min(k, n)

	s.mu.Lock()
	perm := s.rng.Perm(n)
	s.mu.Unlock()

	idx := perm[:k]
	slices.Sort(idx)

	return idx
}
