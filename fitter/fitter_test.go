package fitter

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/sinefit/common"
	"github.com/uyouii/sinefit/model"
	"github.com/uyouii/sinefit/utils"
	"gonum.org/v1/gonum/mat"
)

func sineGrid() []float64 {
	return utils.Arange(0, 4*math.Pi, 0.1)
}

func TestFitDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	x := sineGrid()

	for _, a := range []float64{-1000, -3.5, 0, 1, 42, 1000} {
		for _, b := range []float64{-1000, -2, 0, 7.25, 1000} {
			y := ModelFunctionSlice(x, a, b)

			res, err := FitData(ctx, x, y)
			require.NoError(t, err, "a=%v b=%v", a, b)
			require.Len(t, res.Params, NumParams)
			require.Len(t, res.Errors, NumParams)

			assert.InDelta(t, a, res.Scale(), 1e-6, "a=%v b=%v", a, b)
			assert.InDelta(t, b, res.Offset(), 1e-6, "a=%v b=%v", a, b)
			assert.InDelta(t, 0, res.Errors[0], 1e-6)
			assert.InDelta(t, 0, res.Errors[1], 1e-6)
			assert.NotZero(t, res.StopReason)
		}
	}
}

func TestFitDataIdempotent(t *testing.T) {
	ctx := context.Background()
	x := sineGrid()
	y := ModelFunctionSlice(x, 1, 0)

	first, err := FitData(ctx, x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, first.Params[0], 1e-6)

	refit, err := FitData(ctx, x, ModelFunctionSlice(x, first.Scale(), first.Offset()))
	require.NoError(t, err)
	assert.InDelta(t, first.Params[0], refit.Params[0], 1e-6)
	assert.InDelta(t, first.Params[1], refit.Params[1], 1e-6)
}

func TestFitDataDeterministic(t *testing.T) {
	ctx := context.Background()
	x := sineGrid()
	y := noisySine(x, 2.5, -0.75)

	first, err := FitData(ctx, x, y)
	require.NoError(t, err)
	second, err := FitData(ctx, x, y)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// noisySine adds a deterministic wobble so the residuals are not zero.
func noisySine(x []float64, a, b float64) []float64 {
	y := ModelFunctionSlice(x, a, b)
	for i := range y {
		y[i] += 0.1 * math.Sin(7.3*float64(i)+0.4)
	}
	return y
}

// The model is linear in its parameters, so the fit must agree with the
// ordinary least squares solution and its textbook covariance.
func TestFitDataMatchesLinearLeastSquares(t *testing.T) {
	ctx := context.Background()
	x := sineGrid()
	y := noisySine(x, 2.5, -0.75)
	m := len(x)

	design := mat.NewDense(m, 2, nil)
	for i := range x {
		design.Set(i, 0, math.Sin(x[i]))
		design.Set(i, 1, 1)
	}
	var beta mat.VecDense
	require.NoError(t, beta.SolveVec(design, mat.NewVecDense(m, y)))

	var residual mat.VecDense
	residual.MulVec(design, &beta)
	residual.SubVec(&residual, mat.NewVecDense(m, y))
	variance := mat.Dot(&residual, &residual) / float64(m-2)

	var normal, inv mat.Dense
	normal.Mul(design.T(), design)
	require.NoError(t, inv.Inverse(&normal))

	res, err := FitData(ctx, x, y)
	require.NoError(t, err)

	assert.InDelta(t, beta.AtVec(0), res.Params[0], 1e-8)
	assert.InDelta(t, beta.AtVec(1), res.Params[1], 1e-8)
	assert.InEpsilon(t, math.Sqrt(inv.At(0, 0)*variance), res.Errors[0], 1e-6)
	assert.InEpsilon(t, math.Sqrt(inv.At(1, 1)*variance), res.Errors[1], 1e-6)
	assert.InDelta(t, 0.5*variance*float64(m-2), res.Cost, 1e-9)
}

func TestFitDataInvalidInput(t *testing.T) {
	ctx := context.Background()

	ones := func(n int) []float64 {
		res := make([]float64, n)
		for i := range res {
			res[i] = 1
		}
		return res
	}
	withValue := func(data []float64, i int, v float64) []float64 {
		data[i] = v
		return data
	}

	tests := []struct {
		name string
		x    []float64
		y    []float64
	}{
		{name: "nan in y", x: utils.Arange(0, 10, 1), y: withValue(ones(10), 0, math.NaN())},
		{name: "inf in y", x: utils.Arange(0, 10, 1), y: withValue(ones(10), 4, math.Inf(-1))},
		{name: "nan in x", x: withValue(utils.Arange(0, 10, 1), 9, math.NaN()), y: ones(10)},
		{name: "length mismatch", x: utils.Arange(0, 10, 1), y: ones(9)},
		{name: "empty", x: nil, y: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := FitData(ctx, tt.x, tt.y)
			assert.ErrorIs(t, err, common.ErrorInvalidValue)
			assert.Nil(t, res)
		})
	}
}

func TestFitDataWrongInitialGuess(t *testing.T) {
	x := sineGrid()
	_, err := FitDataWithOptions(context.Background(), x, ModelFunctionSlice(x, 1, 1),
		Options{InitialGuess: []float64{1, 2, 3}})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestFitDataNotConverged(t *testing.T) {
	x := sineGrid()
	y := ModelFunctionSlice(x, 500, -200)

	res, err := FitDataWithOptions(context.Background(), x, y, Options{MaxIterations: 1})
	assert.ErrorIs(t, err, common.ErrorNotConverged)
	assert.Nil(t, res)
}

func TestFitDataTooFewPoints(t *testing.T) {
	res, err := FitData(context.Background(), []float64{0, math.Pi / 2}, []float64{1, 2})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Scale(), 1e-8)
	assert.InDelta(t, 1.0, res.Offset(), 1e-8)
	assert.True(t, math.IsInf(res.Errors[0], 1))
	assert.True(t, math.IsInf(res.Errors[1], 1))
}

func TestFitDataRankDeficient(t *testing.T) {
	// sin(x) is zero everywhere, so the scale cannot be identified
	x := []float64{0, math.Pi, 2 * math.Pi, 0, math.Pi}
	y := []float64{3, 3.5, 2.5, 3.2, 2.8}

	res, err := FitData(context.Background(), x, y)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, res.Offset(), 1e-8)
	assert.True(t, math.IsInf(res.Errors[0], 1))
	assert.True(t, math.IsInf(res.Errors[1], 1))
}

func TestFitDataDoesNotModifyInput(t *testing.T) {
	x := sineGrid()
	y := noisySine(x, -4, 2)
	xCopy := append([]float64(nil), x...)
	yCopy := append([]float64(nil), y...)

	_, err := FitData(context.Background(), x, y)
	require.NoError(t, err)

	assert.Equal(t, xCopy, x)
	assert.Equal(t, yCopy, y)
}

func TestCurveFitOtherModel(t *testing.T) {
	decay := func(x float64, params []float64) float64 {
		return params[0] * math.Exp(params[1]*x)
	}
	x := utils.Arange(0, 2, 0.1)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = decay(x[i], []float64{2, -1.5})
	}

	res, err := curveFit(context.Background(), decay, &model.Samples{X: x, Y: y}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Params[0], 1e-6)
	assert.InDelta(t, -1.5, res.Params[1], 1e-6)
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{MaxIterations: 7}.withDefaults()

	assert.Equal(t, 7, opts.MaxIterations)
	assert.Equal(t, []float64{1, 1}, opts.InitialGuess)
	assert.Equal(t, DefaultTau, opts.Tau)
	assert.Equal(t, DefaultGradientTol, opts.GradientTol)
	assert.Equal(t, DefaultStepTol, opts.StepTol)
}

func TestCurveFitRecoversPanic(t *testing.T) {
	broken := func(x float64, params []float64) float64 {
		return params[5]
	}
	x := utils.Arange(0, 1, 0.1)

	res, err := curveFit(context.Background(), broken, &model.Samples{X: x, Y: x}, DefaultOptions())
	assert.Error(t, err)
	assert.Nil(t, res)
}
