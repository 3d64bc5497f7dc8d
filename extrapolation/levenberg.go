package extrapolation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/zne/errs"
)

const (
	lmTolerance      = 1e-10
	lmGradTolerance  = 1e-8
	lmStallTolerance = 1e-6
	lmInitialLambda  = 1e-3
	lmMaxLambda      = 1e16
	lmZeroCost       = 1e-30
)

// curve is a differentiable model evaluated at a single point.
type curve interface {
	numParams() int
	eval(x float64, params []float64) float64
	// gradient writes ∂model/∂params at x into dst.
	gradient(x float64, params []float64, dst []float64)
	// bounded reports whether params[i] is constrained to be >= 0.
	bounded(i int) bool
	// project clamps params into the feasible region in place.
	project(params []float64)
}

// lmResult is the outcome of a Levenberg-Marquardt fit.
type lmResult struct {
	params     []float64
	covariance *mat.Dense
	iterations int
}

// levenbergMarquardt minimizes Σ((y − f(x))/σ)² over the feasible region
// starting from p0.
//
// Bounded parameters sitting at zero whose gradient points out of the feasible
// region are frozen for the step (active set); the damped system is solved for
// the remaining ones and the trial point is projected back.
//
// The iteration budget is 200·(p+1). Convergence is declared when the scaled
// projected gradient falls under 1e-8, or when the relative cost reduction or
// step size falls under 1e-10. A step search that exhausts the damping only
// counts as converged when the projected gradient is already near zero.
func levenbergMarquardt(model curve, x, y, sigma, p0 []float64) (*lmResult, error) {
	n := len(x)
	p := model.numParams()
	maxIter := 200 * (p + 1)

	params := append([]float64(nil), p0...)
	model.project(params)

	jac := mat.NewDense(n, p, nil)
	resid := mat.NewVecDense(n, nil)
	grad := make([]float64, p)
	free := make([]bool, p)

	evaluate := func(params []float64) float64 {
		var cost float64
		for i := range n {
			r := (y[i] - model.eval(x[i], params)) / sigma[i]
			resid.SetVec(i, r)
			cost += r * r
		}
		return cost
	}
	jacobian := func(params []float64) {
		for i := range n {
			model.gradient(x[i], params, grad)
			for j := range p {
				jac.Set(i, j, grad[j]/sigma[i])
			}
		}
	}

	cost := evaluate(params)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return nil, fmt.Errorf("%w: non-finite cost at initial guess", errs.ErrSolverFailure)
	}

	lambda := lmInitialLambda
	trial := make([]float64, p)
	converged := false
	iter := 0

	for ; iter < maxIter && !converged; iter++ {
		jacobian(params)

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var jtr mat.VecDense
		jtr.MulVec(jac.T(), resid)

		// jtr points downhill: a bounded parameter at zero with jtr <= 0 wants
		// to leave the feasible region.
		for j := range p {
			free[j] = !model.bounded(j) || params[j] > 0 || jtr.AtVec(j) > 0
		}
		pg := projectedGradient(model, params, &jtr, free)
		if pg <= lmGradTolerance || cost <= lmZeroCost {
			converged = true
			break
		}

		accepted, stalled := false, false
		for !accepted {
			if lambda > lmMaxLambda {
				stalled = true
				break
			}

			step, ok := dampedStep(&jtj, &jtr, free, lambda)
			if !ok {
				lambda *= 10
				continue
			}

			for j := range p {
				trial[j] = params[j] + step[j]
			}
			model.project(trial)

			saved := mat.VecDenseCopyOf(resid)
			newCost := evaluate(trial)
			if math.IsNaN(newCost) || math.IsInf(newCost, 0) || newCost >= cost {
				resid.CopyVec(saved)
				lambda *= 10
				continue
			}

			accepted = true
			stepNorm, paramNorm := 0.0, 0.0
			for j := range p {
				d := trial[j] - params[j]
				stepNorm += d * d
				paramNorm += params[j] * params[j]
			}
			reduction := cost - newCost
			copy(params, trial)
			cost = newCost
			lambda = max(lambda/10, 1e-12)

			if reduction <= lmTolerance*cost ||
				math.Sqrt(stepNorm) <= lmTolerance*(math.Sqrt(paramNorm)+lmTolerance) {
				converged = true
			}
		}

		if stalled {
			if pg > lmStallTolerance*max(1, cost) {
				return nil, fmt.Errorf("%w: no descent step at projected gradient %g", errs.ErrSolverFailure, pg)
			}
			converged = true
		}
	}

	if !converged {
		return nil, fmt.Errorf("%w: no convergence after %d iterations", errs.ErrSolverFailure, maxIter)
	}

	for _, v := range params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite parameters", errs.ErrSolverFailure)
		}
	}

	jacobian(params)
	cov, err := covarianceFromJacobian(jac)
	if err != nil {
		return nil, err
	}

	return &lmResult{params: params, covariance: cov, iterations: iter}, nil
}

// projectedGradient returns the infinity norm of jtr over the free parameters.
// Components pushing a bounded parameter towards zero are scaled by its
// distance to the bound, so a parameter converging onto the bound does not
// hold the iteration open.
func projectedGradient(model curve, params []float64, jtr *mat.VecDense, free []bool) float64 {
	var norm float64
	for j, isFree := range free {
		if !isFree {
			continue
		}
		g := math.Abs(jtr.AtVec(j))
		if model.bounded(j) && jtr.AtVec(j) < 0 {
			g *= params[j]
		}
		norm = max(norm, g)
	}

	return norm
}

// dampedStep solves (JᵀJ + λ·diag(JᵀJ))·δ = Jᵀr restricted to the free
// parameters with a Cholesky factorization. Frozen parameters get a zero step.
func dampedStep(jtj *mat.Dense, jtr *mat.VecDense, free []bool, lambda float64) ([]float64, bool) {
	idx := make([]int, 0, len(free))
	for j, isFree := range free {
		if isFree {
			idx = append(idx, j)
		}
	}
	step := make([]float64, len(free))
	if len(idx) == 0 {
		return step, true
	}

	k := len(idx)
	sym := mat.NewSymDense(k, nil)
	rhs := mat.NewVecDense(k, nil)
	for a, i := range idx {
		rhs.SetVec(a, jtr.AtVec(i))
		for b := a; b < k; b++ {
			v := jtj.At(i, idx[b])
			if a == b {
				v += lambda * max(v, 1e-12)
			}
			sym.SetSym(a, b, v)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, false
	}
	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, rhs); err != nil {
		return nil, false
	}
	for a, i := range idx {
		step[i] = sol.AtVec(a)
	}

	return step, true
}
