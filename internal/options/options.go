// Package options implements the generic functional option pattern shared by
// amplifiers, extrapolators and strategies.
package options

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
}

// Func is a functional option backed by a plain function.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New creates an option from a function that may reject its input.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates an option from a function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order and stops at the first error.
// Nil options are skipped so callers can build option lists conditionally.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}

// Validated applies opts to target and then runs validate on the result.
// It is the usual constructor tail: options first, invariants second.
func Validated[T any](target T, validate func(T) error, opts ...Option[T]) error {
	if err := Apply(target, opts...); err != nil {
		return err
	}
	if validate == nil {
		return nil
	}

	return validate(target)
}
