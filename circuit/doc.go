// Package circuit models the operation sequences that noise amplification rewrites.
//
// An Operation is an immutable named action on one or more sites with optional
// real parameters and a well-defined inverse. A Sequence is an ordered list of
// operations over a fixed number of sites. Sequences are values: every
// transformation (Compose, Inverse, amplification in package amplifier)
// produces a new Sequence and never mutates its input.
//
// # Inverses
//
// Inverses follow the standard gate table:
//
//   - self-inverse gates (x, y, z, h, cx, cz, swap, ccx, ...) invert to themselves
//   - adjoint pairs (s/sdg, t/tdg, sx/sxdg) swap names
//   - rotation gates (rx, rz, p, crx, rzz, ...) negate their parameters
//   - u and u3 map (θ, φ, λ) to (-θ, -λ, -φ)
//   - any other name X inverts to X_dg and back
//
// The barrier and measure markers never take part in folding.
//
// # Fingerprints
//
// Sequence.Fingerprint hashes a canonical binary encoding of the sequence with
// xxHash64. Equal sequences always share a fingerprint; the canonical encoding
// itself is available through AppendCanonical for collision checks.
//
// # Equivalence
//
// Reduce removes barriers and cancels adjacent operation/inverse pairs. Folding
// only ever inserts such pairs, so Equivalent(amplified, original) holds for
// every sequence produced by package amplifier.
//
// # Text format
//
// Parse and Format use a line-oriented text form:
//
//	# bell pair
//	sites 2
//	h 0
//	cx 0,1
//	rz 1 0.25
//
// # Batches
//
// EncodeBatch and DecodeBatch serialize many sequences into one optionally
// compressed payload for transport to an execution backend.
package circuit
