package extrapolation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/zne/errs"
)

// Library names of the available extrapolators.
const (
	NamePolynomial       = "polynomial"
	NameLinear           = "linear"
	NameQuadratic        = "quadratic"
	NameCubic            = "cubic"
	NameQuartic          = "quartic"
	NameMultiExponential = "multi_exponential"
	NameExponential      = "exponential"
	NameMonoExponential  = "mono_exponential"
	NameBiExponential    = "bi_exponential"
)

type constructor func(param int, opts []Option) (Extrapolator, error)

func fixed[E Extrapolator](ctor func(opts ...Option) (E, error)) constructor {
	return func(_ int, opts []Option) (Extrapolator, error) {
		ex, err := ctor(opts...)
		if err != nil {
			return nil, err
		}

		return ex, nil
	}
}

func parameterized[E Extrapolator](ctor func(param int, opts ...Option) (E, error)) constructor {
	return func(param int, opts []Option) (Extrapolator, error) {
		ex, err := ctor(param, opts...)
		if err != nil {
			return nil, err
		}

		return ex, nil
	}
}

var library = map[string]constructor{
	NamePolynomial:       parameterized(NewPolynomial),
	NameLinear:           fixed(NewLinear),
	NameQuadratic:        fixed(NewQuadratic),
	NameCubic:            fixed(NewCubic),
	NameQuartic:          fixed(NewQuartic),
	NameMultiExponential: parameterized(NewMultiExponential),
	NameExponential:      fixed(NewExponential),
	NameMonoExponential:  fixed(NewMonoExponential),
	NameBiExponential:    fixed(NewBiExponential),
}

// New creates the extrapolator registered under name.
//
// param is the degree for "polynomial" and the number of terms for
// "multi_exponential"; the fixed-shape facades ignore it.
func New(name string, param int, opts ...Option) (Extrapolator, error) {
	ctor, ok := library[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: extrapolator %q", errs.ErrUnknownName, name)
	}

	return ctor(param, opts)
}

// IsParameterized reports whether the named extrapolator reads the param
// argument of New.
func IsParameterized(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NamePolynomial, NameMultiExponential:
		return true
	default:
		return false
	}
}

// Names returns the sorted library names.
func Names() []string {
	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}
