package circuit

// Reduce removes barriers and cancels adjacent operation/inverse pairs.
//
// Cancellation is purely syntactic and stack based: an operation cancels the
// most recent surviving operation only if one is the inverse of the other.
// Measurements never cancel. The result is meant for comparing the logical
// effect of folded sequences, not for optimizing circuits.
func Reduce(seq Sequence) Sequence {
	stack := make([]Operation, 0, len(seq.ops))
	for _, op := range seq.ops {
		if op.IsBarrier() {
			continue
		}
		if n := len(stack); n > 0 && !op.IsMarker() && cancels(stack[n-1], op) {
			stack = stack[:n-1]
			continue
		}
		stack = append(stack, op)
	}

	return Sequence{numSites: seq.numSites, ops: stack}
}

// Equivalent reports whether a and b reduce to the same sequence.
func Equivalent(a, b Sequence) bool {
	return Reduce(a).Equal(Reduce(b))
}

func cancels(prev, op Operation) bool {
	if prev.IsMarker() {
		return false
	}

	return prev.Inverse().Equal(op) || op.Inverse().Equal(prev)
}
