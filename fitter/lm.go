package fitter

import (
	"fmt"
	"math"

	"github.com/uyouii/sinefit/common"
	"github.com/uyouii/sinefit/model"
	"github.com/uyouii/sinefit/utils"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Func is a model evaluated at a single x for a parameter vector.
type Func func(x float64, params []float64) float64

// problem is the least squares problem min 0.5*||f(x; p) - y||^2 over p.
type problem struct {
	f Func
	x []float64
	y []float64
}

func (p *problem) residuals(dst, params []float64) {
	for i := range p.x {
		dst[i] = p.f(p.x[i], params) - p.y[i]
	}
}

// jacobian is evaluated serially so the solver path stays deterministic.
func (p *problem) jacobian(dst *mat.Dense, params []float64) {
	fd.Jacobian(dst, p.residuals, params, &fd.JacobianSettings{
		Formula: fd.Central,
	})
}

type lmState struct {
	params     []float64
	residuals  []float64
	jac        *mat.Dense
	iterations int
	reason     model.StopReason
}

func (s *lmState) cost() float64 {
	return 0.5 * floats.Dot(s.residuals, s.residuals)
}

// levenbergMarquardt minimizes the problem starting from opts.InitialGuess.
// Damping follows Nielsen: mu starts at tau*max(diag(J'J)), shrinks on
// accepted steps by max(1/3, 1-(2rho-1)^3) and grows geometrically on
// rejected ones.
func levenbergMarquardt(p *problem, opts Options) (*lmState, error) {
	m, n := len(p.x), len(opts.InitialGuess)

	state := &lmState{
		params:    make([]float64, n),
		residuals: make([]float64, m),
		jac:       mat.NewDense(m, n, nil),
	}
	copy(state.params, opts.InitialGuess)
	p.residuals(state.residuals, state.params)
	if !utils.AllFinite(state.residuals) {
		return nil, fmt.Errorf("residuals not finite at initial guess %v: %w",
			opts.InitialGuess, common.ErrorInvalidValue)
	}
	p.jacobian(state.jac, state.params)

	var a mat.SymDense
	var g mat.VecDense
	normalEquations(&a, &g, state.jac, state.residuals)

	if floats.Norm(g.RawVector().Data, math.Inf(1)) <= opts.GradientTol {
		state.reason = model.GradientConverged
		return state, nil
	}

	mu := opts.Tau * maxDiag(&a)
	if mu == 0 {
		mu = opts.Tau
	}
	nu := 2.0
	cost := state.cost()

	h := mat.NewVecDense(n, nil)
	trial := make([]float64, n)
	trialResiduals := make([]float64, m)

	for k := 1; k <= opts.MaxIterations; k++ {
		state.iterations = k

		if !solveDamped(h, &a, &g, mu) {
			mu *= nu
			nu *= 2
			continue
		}
		step := h.RawVector().Data
		if floats.Norm(step, 2) <= opts.StepTol*(floats.Norm(state.params, 2)+opts.StepTol) {
			state.reason = model.StepConverged
			return state, nil
		}

		floats.AddTo(trial, state.params, step)
		p.residuals(trialResiduals, trial)
		trialCost := 0.5 * floats.Dot(trialResiduals, trialResiduals)

		// gain ratio of actual over predicted reduction, L(0)-L(h) = 0.5*h'(mu*h - g)
		predicted := 0.5 * (mu*floats.Dot(step, step) - floats.Dot(step, g.RawVector().Data))
		rho := (cost - trialCost) / predicted

		if rho > 0 && !math.IsInf(trialCost, 0) {
			copy(state.params, trial)
			copy(state.residuals, trialResiduals)
			cost = trialCost
			p.jacobian(state.jac, state.params)
			normalEquations(&a, &g, state.jac, state.residuals)

			if floats.Norm(g.RawVector().Data, math.Inf(1)) <= opts.GradientTol {
				state.reason = model.GradientConverged
				return state, nil
			}
			mu *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
			nu = 2
		} else {
			mu *= nu
			nu *= 2
		}
	}

	return nil, fmt.Errorf("no solution within %d iterations: %w", opts.MaxIterations, common.ErrorNotConverged)
}

// normalEquations computes a = J'J and g = J'r.
func normalEquations(a *mat.SymDense, g *mat.VecDense, jac *mat.Dense, r []float64) {
	a.SymOuterK(1, jac.T())
	g.MulVec(jac.T(), mat.NewVecDense(len(r), r))
}

// solveDamped solves (a + mu*I) dst = -g. It reports false when the damped
// matrix is not positive definite.
func solveDamped(dst *mat.VecDense, a *mat.SymDense, g *mat.VecDense, mu float64) bool {
	n := a.SymmetricDim()
	damped := mat.NewSymDense(n, nil)
	damped.CopySym(a)
	for i := 0; i < n; i++ {
		damped.SetSym(i, i, damped.At(i, i)+mu)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(damped); !ok {
		return false
	}

	var rhs mat.VecDense
	rhs.ScaleVec(-1, g)
	if err := chol.SolveVecTo(dst, &rhs); err != nil {
		return false
	}
	return true
}

func maxDiag(a *mat.SymDense) float64 {
	res := 0.0
	for i := 0; i < a.SymmetricDim(); i++ {
		res = math.Max(res, a.At(i, i))
	}
	return res
}
