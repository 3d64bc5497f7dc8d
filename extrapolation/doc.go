// Package extrapolation fits regression models to noise-amplified measurements
// and extrapolates them to the zero-noise limit.
//
// Two families of ordinary-least-squares models are provided:
//   - Polynomial: y(x) = Σ c_i x^i, fitted in closed form
//   - MultiExponential: y(x) = shift + Σ a_j exp(−r_j x), fitted with a bounded
//     Levenberg-Marquardt solver that keeps decay rates non-negative
//
// Every extrapolator validates its input the same way before fitting: the four
// data series must be finite and of equal length, and the number of distinct
// noise factors must reach MinPoints.
//
// Example:
//
//	ex := extrapolation.NewLinear()
//	res, err := ex.ExtrapolateZero([]float64{1, 3, 5}, []float64{0.9, 0.72, 0.55}, nil, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Value, res.StdError, res.Metadata.R2)
package extrapolation
