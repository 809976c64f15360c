package fitter

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var machineEpsilon = math.Nextafter(1, 2) - 1

// covariance estimates the parameter covariance at the optimum as
// pinv(J'J) * sum(r^2)/(m-n), using the SVD of J. Singular values at or
// below eps*max(m,n)*s[0] count as zero; when that happens, or when there
// are no degrees of freedom left, ok is false.
func covariance(jac *mat.Dense, residuals []float64) (cov *mat.SymDense, ok bool) {
	m, n := jac.Dims()
	if m <= n {
		return nil, false
	}

	var svd mat.SVD
	if !svd.Factorize(jac, mat.SVDThin) {
		return nil, false
	}
	s := svd.Values(nil)
	threshold := machineEpsilon * float64(max(m, n)) * s[0]
	for _, v := range s {
		if v <= threshold {
			return nil, false
		}
	}

	var v mat.Dense
	svd.VTo(&v)

	variance := floats.Dot(residuals, residuals) / float64(m-n)
	cov = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for k := range s {
				sum += v.At(i, k) * v.At(j, k) / (s[k] * s[k])
			}
			cov.SetSym(i, j, sum*variance)
		}
	}
	return cov, true
}

// standardErrors returns the square roots of the covariance diagonal, or
// +Inf for every parameter when the covariance could not be estimated.
func standardErrors(cov *mat.SymDense, n int) []float64 {
	res := make([]float64, n)
	if cov == nil {
		for i := range res {
			res[i] = math.Inf(1)
		}
		return res
	}
	for i := range res {
		res[i] = math.Sqrt(cov.At(i, i))
	}
	return res
}
