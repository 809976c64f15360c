package fitter

import "math"

// ModelFunction evaluates scale*sin(x) + offset, with x in radians.
func ModelFunction(x, scale, offset float64) float64 {
	return scale*math.Sin(x) + offset
}

// ModelFunctionSlice evaluates ModelFunction at every element of x.
// NaN and Inf in x propagate to the matching output element.
func ModelFunctionSlice(x []float64, scale, offset float64) []float64 {
	res := make([]float64, len(x))
	for i, v := range x {
		res[i] = ModelFunction(v, scale, offset)
	}
	return res
}

// Sine is ModelFunction with its parameters packed as (scale, offset),
// the form the solver works with.
func Sine(x float64, params []float64) float64 {
	return ModelFunction(x, params[0], params[1])
}
