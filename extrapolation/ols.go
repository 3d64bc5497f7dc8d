package extrapolation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/zne/errs"
)

// sigmaRelativeAtol is the absolute tolerance under which sigma/y counts as zero.
const sigmaRelativeAtol = 1e-8

var machineEpsilon = math.Nextafter(1, 2) - 1

// computeSigma returns the per-point standard errors used as fit weights and
// whether they are absolute. When any error is zero relative to its value the
// fit falls back to unit weights, and the covariance is then rescaled by the
// reduced chi-square of the residuals.
func computeSigma(y, sigmaY []float64) ([]float64, bool) {
	for i, s := range sigmaY {
		if s == 0 {
			return ones(len(y)), false
		}
		rel := s / y[i]
		if !math.IsInf(rel, 0) && !math.IsNaN(rel) && math.Abs(rel) <= sigmaRelativeAtol {
			return ones(len(y)), false
		}
	}

	return sigmaY, true
}

// weightedRows divides every row of a and every entry of b by sigma.
func weightedRows(a *mat.Dense, b, sigma []float64) (*mat.Dense, *mat.VecDense) {
	rows, cols := a.Dims()
	aw := mat.NewDense(rows, cols, nil)
	bw := mat.NewVecDense(rows, nil)
	for i := range rows {
		w := 1 / math.Abs(sigma[i])
		for j := range cols {
			aw.Set(i, j, a.At(i, j)*w)
		}
		bw.SetVec(i, b[i]*w)
	}

	return aw, bw
}

// svdCutoff returns the singular value threshold below which directions are
// treated as rank deficient.
func svdCutoff(values []float64, rows, cols int) float64 {
	if len(values) == 0 {
		return 0
	}

	return machineEpsilon * float64(max(rows, cols)) * values[0]
}

// solveLinear fits design·c ≈ y in the weighted least-squares sense.
//
// Parameters:
//   - design: n×p design matrix
//   - y: observations
//   - sigma: standard errors of y, used as weights
//   - absolute: whether sigma is absolute; otherwise the covariance is rescaled
//
// Returns:
//   - coefficients: fitted parameters, length p
//   - covariance: p×p covariance of the parameters
//   - error: ErrSolverFailure when the factorization fails
func solveLinear(design *mat.Dense, y, sigma []float64, absolute bool) ([]float64, *mat.Dense, error) {
	rows, cols := design.Dims()
	aw, bw := weightedRows(design, y, sigma)

	var svd mat.SVD
	if !svd.Factorize(aw, mat.SVDThin) {
		return nil, nil, fmt.Errorf("%w: SVD factorization did not converge", errs.ErrSolverFailure)
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := svdCutoff(values, rows, cols)
	coef := make([]float64, cols)
	for k, s := range values {
		if s <= cutoff {
			continue
		}
		proj := mat.Dot(u.ColView(k), bw) / s
		for j := range cols {
			coef[j] += v.At(j, k) * proj
		}
	}

	cov := pseudoInverseGram(&v, values, cutoff)
	if !absolute {
		var fitted mat.VecDense
		fitted.MulVec(aw, mat.NewVecDense(cols, coef))
		var resid mat.VecDense
		resid.SubVec(bw, &fitted)
		scaleCovariance(cov, mat.Dot(&resid, &resid), rows, cols)
	}

	return coef, cov, nil
}

// covarianceFromJacobian returns (JᵀJ)⁺ computed from the SVD of jac.
func covarianceFromJacobian(jac *mat.Dense) (*mat.Dense, error) {
	rows, cols := jac.Dims()

	var svd mat.SVD
	if !svd.Factorize(jac, mat.SVDThin) {
		return nil, fmt.Errorf("%w: SVD factorization did not converge", errs.ErrSolverFailure)
	}
	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	return pseudoInverseGram(&v, values, svdCutoff(values, rows, cols)), nil
}

// pseudoInverseGram builds V·diag(1/s²)·Vᵀ over the singular values above cutoff.
func pseudoInverseGram(v *mat.Dense, values []float64, cutoff float64) *mat.Dense {
	p, _ := v.Dims()
	cov := mat.NewDense(p, p, nil)
	for k, s := range values {
		if s <= cutoff {
			continue
		}
		inv := 1 / (s * s)
		for i := range p {
			for j := range p {
				cov.Set(i, j, cov.At(i, j)+v.At(i, k)*v.At(j, k)*inv)
			}
		}
	}

	return cov
}

// scaleCovariance multiplies cov by the reduced chi-square rss/(n−p). With
// no degrees of freedom left the fit interpolates the data and cov is zeroed.
func scaleCovariance(cov *mat.Dense, rss float64, n, p int) {
	if n > p {
		cov.Scale(rss/float64(n-p), cov)
		return
	}

	cov.Zero()
}

// residuals returns y − model(x) for every point.
func residuals(x, y []float64, model func(float64) float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = y[i] - model(x[i])
	}

	return out
}

// rSquared computes the coefficient of determination 1 − RSS/TSS.
func rSquared(y, resid []float64) float64 {
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var rss, tss float64
	for i, v := range y {
		rss += resid[i] * resid[i]
		d := v - mean
		tss += d * d
	}

	if tss == 0 {
		if rss == 0 {
			return 1
		}
		return math.NaN()
	}

	return 1 - rss/tss
}

func denseRows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = make([]float64, c)
		for j := range c {
			out[i][j] = m.At(i, j)
		}
	}

	return out
}
