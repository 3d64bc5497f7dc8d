// Package amplifier implements digital noise amplification by folding.
//
// Folding replaces a sequence (global folding) or individual operations (local
// folding) with alternating forward and inverse repetitions. The logical effect
// is unchanged while the physical noise exposure grows by the requested noise
// factor. Non-odd noise factors are approximated by sub-folding a subset of the
// units selected from the first, from the last, or at random.
//
// Basic usage:
//
//	amp, err := amplifier.NewGlobalFolding(amplifier.WithRandomSeed(7))
//	if err != nil {
//	    return err
//	}
//	noisy, err := amp.Amplify(seq, 3)
//
// Non-fatal anomalies are logged as zap warnings. WithWarnUser(false) silences
// the "nothing to fold" and unknown fold set name warnings; noise factor
// rounding is always logged.
package amplifier
