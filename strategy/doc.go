// Package strategy orchestrates zero-noise extrapolation.
//
// A Strategy combines a list of noise factors, a folding amplifier and an
// extrapolator. It is used in two phases around an external execution backend:
//
//  1. BuildNoisyVariants turns every original sequence into one amplified
//     variant per noise factor (and MapToNoisyVariants replicates any auxiliary
//     per-sequence arguments to match).
//  2. Mitigate groups the raw results of those variants back per original
//     sequence and extrapolates each group to the zero-noise limit.
//
// Mitigator wraps an Executor so both phases happen behind a single Submit call
// returning a Job.
//
// Amplified sequences are memoized per (sequence fingerprint, noise factor) in
// a bounded cache owned by the strategy.
package strategy
