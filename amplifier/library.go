package amplifier

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/errs"
)

// Library names of the available amplifiers.
const (
	NameGlobal     = "global"
	NameLocal      = "local"
	NameCX         = "cx"
	NameTwoQubit   = "two_qubit"
	NameMultiQubit = "multi_qubit"
)

// NewCXAmplifier folds cx operations only.
func NewCXAmplifier(opts ...Option) (*LocalFolding, error) {
	return newLocal(NameCX, nil, slices.Concat(opts, []Option{WithOperationsToFold("cx")}))
}

// NewTwoQubitAmplifier folds two-site operations only.
func NewTwoQubitAmplifier(opts ...Option) (*LocalFolding, error) {
	return newLocal(NameTwoQubit, nil, slices.Concat(opts, []Option{WithArities(2)}))
}

// NewMultiQubitAmplifier folds every operation acting on more than one site.
func NewMultiQubitAmplifier(opts ...Option) (*LocalFolding, error) {
	return newLocal(NameMultiQubit, func(op circuit.Operation) bool {
		return op.Arity() > 1
	}, opts)
}

var library = map[string]func(opts ...Option) (Amplifier, error){
	NameGlobal:     wrap(NewGlobalFolding),
	NameLocal:      wrap(NewLocalFolding),
	NameCX:         wrap(NewCXAmplifier),
	NameTwoQubit:   wrap(NewTwoQubitAmplifier),
	NameMultiQubit: wrap(NewMultiQubitAmplifier),
}

func wrap[A Amplifier](ctor func(opts ...Option) (A, error)) func(opts ...Option) (Amplifier, error) {
	return func(opts ...Option) (Amplifier, error) {
		amp, err := ctor(opts...)
		if err != nil {
			return nil, err
		}

		return amp, nil
	}
}

// New creates the amplifier registered under name.
func New(name string, opts ...Option) (Amplifier, error) {
	ctor, ok := library[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: amplifier %q", errs.ErrUnknownName, name)
	}

	return ctor(opts...)
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
