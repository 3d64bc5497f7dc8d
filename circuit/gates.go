package circuit

import "math"

const (
	// BarrierName is the name of the synchronization marker.
	BarrierName = "barrier"
	// MeasureName is the name of the measurement marker.
	MeasureName = "measure"

	adjointSuffix = "_dg"
)

type inverseKind uint8

const (
	inverseSelf inverseKind = iota + 1
	inversePair
	inverseNegate
	inverseU
	inverseU2
)

type gateInfo struct {
	kind    inverseKind
	partner string
	params  int
}

// standardGates lists the operation names the package knows how to invert
// without falling back to the _dg naming convention.
var standardGates = map[string]gateInfo{
	"id":    {kind: inverseSelf},
	"x":     {kind: inverseSelf},
	"y":     {kind: inverseSelf},
	"z":     {kind: inverseSelf},
	"h":     {kind: inverseSelf},
	"cx":    {kind: inverseSelf},
	"cy":    {kind: inverseSelf},
	"cz":    {kind: inverseSelf},
	"ch":    {kind: inverseSelf},
	"swap":  {kind: inverseSelf},
	"ccx":   {kind: inverseSelf},
	"ccz":   {kind: inverseSelf},
	"cswap": {kind: inverseSelf},
	"ecr":   {kind: inverseSelf},

	"s":    {kind: inversePair, partner: "sdg"},
	"sdg":  {kind: inversePair, partner: "s"},
	"t":    {kind: inversePair, partner: "tdg"},
	"tdg":  {kind: inversePair, partner: "t"},
	"sx":   {kind: inversePair, partner: "sxdg"},
	"sxdg": {kind: inversePair, partner: "sx"},

	"rx":  {kind: inverseNegate, params: 1},
	"ry":  {kind: inverseNegate, params: 1},
	"rz":  {kind: inverseNegate, params: 1},
	"p":   {kind: inverseNegate, params: 1},
	"u1":  {kind: inverseNegate, params: 1},
	"crx": {kind: inverseNegate, params: 1},
	"cry": {kind: inverseNegate, params: 1},
	"crz": {kind: inverseNegate, params: 1},
	"cp":  {kind: inverseNegate, params: 1},
	"rxx": {kind: inverseNegate, params: 1},
	"ryy": {kind: inverseNegate, params: 1},
	"rzz": {kind: inverseNegate, params: 1},
	"rzx": {kind: inverseNegate, params: 1},

	"u":  {kind: inverseU, params: 3},
	"u3": {kind: inverseU, params: 3},
	"u2": {kind: inverseU2, params: 2},

	BarrierName: {kind: inverseSelf},
	MeasureName: {kind: inverseSelf},
}

// IsStandardGate reports whether name is in the standard gate table.
func IsStandardGate(name string) bool {
	_, ok := standardGates[name]
	return ok
}

// IsMarker reports whether name is a barrier or measurement marker.
func IsMarker(name string) bool {
	return name == BarrierName || name == MeasureName
}

// inverseOf computes the inverse name and parameters for an operation.
func inverseOf(name string, params []float64) (string, []float64) {
	info, ok := standardGates[name]
	if !ok {
		if base, found := cutSuffix(name, adjointSuffix); found {
			return base, cloneFloats(params)
		}

		return name + adjointSuffix, cloneFloats(params)
	}

	switch info.kind {
	case inversePair:
		return info.partner, cloneFloats(params)
	case inverseNegate:
		out := make([]float64, len(params))
		for i, p := range params {
			out[i] = -p
		}

		return name, out
	case inverseU:
		if len(params) != 3 {
			return name, cloneFloats(params)
		}

		return name, []float64{-params[0], -params[2], -params[1]}
	case inverseU2:
		if len(params) != 2 {
			return name, cloneFloats(params)
		}
		// u2(φ, λ) = u(π/2, φ, λ)
		return "u", []float64{-math.Pi / 2, -params[1], -params[0]}
	default:
		return name, cloneFloats(params)
	}
}

func cutSuffix(s, suffix string) (string, bool) {
	if len(s) > len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)], true
	}

	return s, false
}

func cloneFloats(v []float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)

	return out
}
