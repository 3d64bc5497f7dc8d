package circuit

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/arloliu/zne/errs"
)

// Sequence is an ordered list of operations over a fixed number of sites.
//
// The zero value is an empty sequence over zero sites.
type Sequence struct {
	numSites int
	ops      []Operation
}

// New creates a sequence over numSites sites.
//
// A non-positive numSites is inferred from the largest site used by ops.
// Operations referencing sites outside [0, numSites) are rejected.
func New(numSites int, ops ...Operation) (Sequence, error) {
	maxSite := -1
	for _, op := range ops {
		maxSite = max(maxSite, op.maxSite())
	}
	if numSites <= 0 {
		numSites = maxSite + 1
	}
	if maxSite >= numSites {
		return Sequence{}, fmt.Errorf("%w: site %d outside sequence of %d sites",
			errs.ErrInvalidOperation, maxSite, numSites)
	}

	return Sequence{numSites: numSites, ops: slices.Clone(ops)}, nil
}

// MustNew is like New but panics on error.
func MustNew(numSites int, ops ...Operation) Sequence {
	seq, err := New(numSites, ops...)
	if err != nil {
		panic(err)
	}

	return seq
}

// NumSites returns the number of sites.
func (s Sequence) NumSites() int {
	return s.numSites
}

// Len returns the number of operations, markers included.
func (s Sequence) Len() int {
	return len(s.ops)
}

// At returns the i-th operation.
func (s Sequence) At(i int) Operation {
	return s.ops[i]
}

// Ops returns a copy of the operation list.
func (s Sequence) Ops() []Operation {
	return slices.Clone(s.ops)
}

// All iterates over the operations with their indices.
func (s Sequence) All() iter.Seq2[int, Operation] {
	return func(yield func(int, Operation) bool) {
		for i, op := range s.ops {
			if !yield(i, op) {
				return
			}
		}
	}
}

// Slice returns the sub-sequence of operations [from, to).
func (s Sequence) Slice(from, to int) Sequence {
	return Sequence{numSites: s.numSites, ops: slices.Clone(s.ops[from:to])}
}

// Pick returns the sub-sequence made of the operations at the given indices,
// in the order the indices are given.
func (s Sequence) Pick(indices []int) Sequence {
	ops := make([]Operation, len(indices))
	for i, idx := range indices {
		ops[i] = s.ops[idx]
	}

	return Sequence{numSites: s.numSites, ops: ops}
}

// Compose returns s followed by other. The result spans the larger site count.
func (s Sequence) Compose(other Sequence) Sequence {
	ops := make([]Operation, 0, len(s.ops)+len(other.ops))
	ops = append(ops, s.ops...)
	ops = append(ops, other.ops...)

	return Sequence{numSites: max(s.numSites, other.numSites), ops: ops}
}

// Inverse returns the sequence that undoes s: reversed order, each operation inverted.
func (s Sequence) Inverse() Sequence {
	ops := make([]Operation, len(s.ops))
	for i, op := range s.ops {
		ops[len(s.ops)-1-i] = op.Inverse()
	}

	return Sequence{numSites: s.numSites, ops: ops}
}

// Clone returns a copy of s. Operations are immutable and shared.
func (s Sequence) Clone() Sequence {
	return Sequence{numSites: s.numSites, ops: slices.Clone(s.ops)}
}

// Equal reports whether both sequences have the same sites and operations.
func (s Sequence) Equal(other Sequence) bool {
	return s.numSites == other.numSites &&
		slices.EqualFunc(s.ops, other.ops, Operation.Equal)
}

// CountIf returns the number of operations satisfying pred.
func (s Sequence) CountIf(pred func(Operation) bool) int {
	n := 0
	for _, op := range s.ops {
		if pred(op) {
			n++
		}
	}

	return n
}

// String renders the sequence in the text format accepted by Parse.
func (s Sequence) String() string {
	return Format(s)
}

// Builder accumulates operations into a new Sequence.
type Builder struct {
	numSites int
	ops      []Operation
}

// NewBuilder creates a builder for a sequence over numSites sites with room for
// sizeHint operations.
func NewBuilder(numSites, sizeHint int) *Builder {
	return &Builder{numSites: numSites, ops: make([]Operation, 0, max(sizeHint, 0))}
}

// Append adds operations.
func (b *Builder) Append(ops ...Operation) *Builder {
	b.ops = append(b.ops, ops...)
	return b
}

// Compose appends every operation of seq.
func (b *Builder) Compose(seq Sequence) *Builder {
	b.ops = append(b.ops, seq.ops...)
	b.numSites = max(b.numSites, seq.numSites)

	return b
}

// Barrier appends a barrier over sites, or over every site when none are given.
func (b *Builder) Barrier(sites ...int) *Builder {
	if len(sites) == 0 {
		sites = make([]int, b.numSites)
		for i := range sites {
			sites[i] = i
		}
	}
	b.ops = append(b.ops, Barrier(sites...))

	return b
}

// Len returns the number of operations appended so far.
func (b *Builder) Len() int {
	return len(b.ops)
}

// Build returns the accumulated sequence. The builder may keep being used.
func (b *Builder) Build() Sequence {
	return Sequence{numSites: b.numSites, ops: slices.Clone(b.ops)}
}

// Names returns the operation names of s in order; handy in tests and logs.
func (s Sequence) Names() []string {
	names := make([]string, len(s.ops))
	for i, op := range s.ops {
		names[i] = op.name
	}

	return names
}

// Summary returns a compact one-line description such as "3 sites, 12 ops".
func (s Sequence) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d sites, %d ops", s.numSites, len(s.ops))

	return sb.String()
}

// Append returns a new sequence with ops added at the end.
func (s Sequence) Append(ops ...Operation) (Sequence, error) {
	all := make([]Operation, 0, len(s.ops)+len(ops))
	all = append(all, s.ops...)
	all = append(all, ops...)

	return New(s.numSites, all...)
}
