package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Linspace returns num evenly spaced values over [start, stop].
func Linspace(start, stop float64, num int) []float64 {
	if num < 2 {
		return []float64{start}
	}
	grid := make([]float64, num)
	floats.Span(grid, start, stop)
	return grid
}

// Arange returns values from start up to, not including, stop.
func Arange(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return []float64{}
	}
	n := int(math.Ceil((stop - start) / step))
	res := make([]float64, n)
	for i := range res {
		res[i] = start + float64(i)*step
	}
	return res
}

func AllFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MinMax returns the extremes of data, which must be non empty.
func MinMax(data []float64) (float64, float64) {
	return floats.Min(data), floats.Max(data)
}
