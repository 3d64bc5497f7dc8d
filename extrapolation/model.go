package extrapolation

import "strings"

// Model identifies a regression model family.
type Model int

const (
	// ModelPolynomial is y(x) = c0 + c1·x + ... + cd·x^d.
	ModelPolynomial Model = iota
	// ModelMultiExponential is y(x) = shift + Σ a_j·exp(−r_j·x).
	ModelMultiExponential
)

var modelNames = map[Model]string{
	ModelPolynomial:       "polynomial",
	ModelMultiExponential: "multi_exponential",
}

// String returns the string representation of the model.
func (m Model) String() string {
	if name, exists := modelNames[m]; exists {
		return name
	}

	return "unknown"
}

var modelFromString = map[string]Model{
	"polynomial":        ModelPolynomial,
	"multi_exponential": ModelMultiExponential,
}

// ModelFromString returns the Model for a given name.
// Returns Model(-1) for unknown names.
func ModelFromString(name string) Model {
	if m, exists := modelFromString[strings.ToLower(name)]; exists {
		return m
	}

	return Model(-1)
}
