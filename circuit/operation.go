package circuit

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/arloliu/zne/errs"
)

// Operation is an immutable action on a set of sites.
type Operation struct {
	name   string
	sites  []int
	params []float64
}

// NewOperation creates an operation, validating its name, sites and parameters.
//
// Names are normalized to lower case. Sites must be non-negative and distinct;
// standard gates must carry their expected number of parameters and every
// parameter must be finite.
func NewOperation(name string, sites []int, params ...float64) (Operation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Operation{}, fmt.Errorf("%w: empty name", errs.ErrInvalidOperation)
	}
	if strings.ContainsAny(name, " \t\n,#") {
		return Operation{}, fmt.Errorf("%w: name %q contains separators", errs.ErrInvalidOperation, name)
	}
	if len(sites) == 0 && name != BarrierName {
		return Operation{}, fmt.Errorf("%w: %s has no sites", errs.ErrInvalidOperation, name)
	}

	seen := make(map[int]struct{}, len(sites))
	for _, s := range sites {
		if s < 0 {
			return Operation{}, fmt.Errorf("%w: %s has negative site %d", errs.ErrInvalidOperation, name, s)
		}
		if _, dup := seen[s]; dup {
			return Operation{}, fmt.Errorf("%w: %s repeats site %d", errs.ErrInvalidOperation, name, s)
		}
		seen[s] = struct{}{}
	}

	if info, ok := standardGates[name]; ok && info.params > 0 && len(params) != info.params {
		return Operation{}, fmt.Errorf("%w: %s expects %d parameters, got %d",
			errs.ErrInvalidOperation, name, info.params, len(params))
	}
	for _, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Operation{}, fmt.Errorf("%s parameter: %w", name, errs.ErrNotFinite)
		}
	}

	return Operation{
		name:   name,
		sites:  slices.Clone(sites),
		params: cloneFloats(params),
	}, nil
}

// MustOperation is like NewOperation but panics on error.
func MustOperation(name string, sites []int, params ...float64) Operation {
	op, err := NewOperation(name, sites, params...)
	if err != nil {
		panic(err)
	}

	return op
}

// Op is a shorthand for MustOperation with variadic sites and no parameters.
func Op(name string, sites ...int) Operation {
	return MustOperation(name, sites)
}

// Barrier returns a barrier marker over sites.
func Barrier(sites ...int) Operation {
	return Operation{name: BarrierName, sites: slices.Clone(sites)}
}

// Measure returns a measurement marker on sites.
func Measure(sites ...int) Operation {
	return MustOperation(MeasureName, sites)
}

// Name returns the operation name.
func (o Operation) Name() string {
	return o.name
}

// Arity returns the number of sites the operation acts on.
func (o Operation) Arity() int {
	return len(o.sites)
}

// Sites returns a copy of the operation sites.
func (o Operation) Sites() []int {
	return slices.Clone(o.sites)
}

// Params returns a copy of the operation parameters.
func (o Operation) Params() []float64 {
	return cloneFloats(o.params)
}

// IsMarker reports whether the operation is a barrier or measurement.
func (o Operation) IsMarker() bool {
	return IsMarker(o.name)
}

// IsBarrier reports whether the operation is a barrier.
func (o Operation) IsBarrier() bool {
	return o.name == BarrierName
}

// Inverse returns the inverse operation on the same sites.
func (o Operation) Inverse() Operation {
	name, params := inverseOf(o.name, o.params)

	return Operation{
		name:   name,
		sites:  slices.Clone(o.sites),
		params: params,
	}
}

// Equal reports whether two operations have the same name, sites and parameters.
func (o Operation) Equal(other Operation) bool {
	return o.name == other.name &&
		slices.Equal(o.sites, other.sites) &&
		slices.Equal(o.params, other.params)
}

// maxSite returns the largest site index, or -1 for operations without sites.
func (o Operation) maxSite() int {
	if len(o.sites) == 0 {
		return -1
	}

	return slices.Max(o.sites)
}

// String formats the operation in the text form accepted by Parse.
func (o Operation) String() string {
	var sb strings.Builder
	sb.WriteString(o.name)
	if len(o.sites) > 0 {
		sb.WriteByte(' ')
		for i, s := range o.sites {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(s))
		}
	}
	if len(o.params) > 0 {
		sb.WriteByte(' ')
		for i, p := range o.params {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
		}
	}

	return sb.String()
}
