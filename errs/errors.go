// Package errs declares the sentinel errors shared by all zne packages.
//
// Errors fall into two classes mirroring the usual "bad type" versus "bad value"
// split. Every specific sentinel wraps one of the two class sentinels, so callers
// can match either precisely or broadly:
//
//	if errors.Is(err, errs.ErrInsufficientData) { ... } // precise
//	if errors.Is(err, errs.ErrInvalidValue) { ... }     // whole class
//
// Solver failures form their own class and are never reinterpreted by callers.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidType reports wrong kinds of input: non-finite numbers, nil
	// collaborators or unknown option types.
	ErrInvalidType = errors.New("invalid type")
	// ErrInvalidValue reports numerically out-of-range or structurally invalid input.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNotFinite reports NaN or infinite numbers where real values are required.
	ErrNotFinite = fmt.Errorf("%w: value is not a finite real number", ErrInvalidType)
	// ErrNilComponent reports a nil amplifier, extrapolator or executor.
	ErrNilComponent = fmt.Errorf("%w: nil component", ErrInvalidType)

	// ErrNoiseFactor reports a noise factor below one.
	ErrNoiseFactor = fmt.Errorf("%w: noise factor must be >= 1", ErrInvalidValue)
	// ErrEmptyNoiseFactors reports an empty noise factor list.
	ErrEmptyNoiseFactors = fmt.Errorf("%w: noise factors must not be empty", ErrInvalidValue)
	// ErrLengthMismatch reports parallel sequences of different lengths.
	ErrLengthMismatch = fmt.Errorf("%w: mismatched lengths", ErrInvalidValue)
	// ErrInsufficientData reports fewer distinct data points than a model needs.
	ErrInsufficientData = fmt.Errorf("%w: insufficient data", ErrInvalidValue)
	// ErrResultCount reports a raw result count that is not a multiple of the
	// number of noise factors, or a mitigated count that differs from the
	// number of submitted sequences.
	ErrResultCount = fmt.Errorf("%w: inconsistent number of results", ErrInvalidValue)
	// ErrUnknownName reports an unknown library name for an amplifier,
	// extrapolator, sub-folding option or compression type.
	ErrUnknownName = fmt.Errorf("%w: unknown name", ErrInvalidValue)
	// ErrInvalidOperation reports a malformed operation (empty name, negative or
	// duplicate sites, sites outside the sequence).
	ErrInvalidOperation = fmt.Errorf("%w: invalid operation", ErrInvalidValue)
	// ErrInvalidPayload reports a corrupted or unsupported batch payload.
	ErrInvalidPayload = fmt.Errorf("%w: invalid payload", ErrInvalidValue)

	// ErrSolverFailure reports a least-squares fit that did not converge or hit a
	// singular system.
	ErrSolverFailure = errors.New("least-squares solver failed")
)
