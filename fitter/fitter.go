package fitter

import (
	"context"
	"fmt"

	"github.com/uyouii/sinefit/common"
	"github.com/uyouii/sinefit/model"
	"github.com/uyouii/sinefit/utils"
	"go.uber.org/zap"
)

// Options tunes the Levenberg-Marquardt solver. Zero fields take the
// values from DefaultOptions.
type Options struct {
	// InitialGuess is the starting (scale, offset).
	InitialGuess []float64

	MaxIterations int

	// Tau scales the initial damping relative to max(diag(J'J)).
	Tau float64

	// GradientTol stops the solver when ||J'r||_inf falls below it.
	GradientTol float64

	// StepTol stops the solver when ||h|| <= StepTol*(||p|| + StepTol).
	StepTol float64
}

func DefaultOptions() Options {
	return Options{
		InitialGuess:  []float64{1, 1},
		MaxIterations: DefaultMaxIterations,
		Tau:           DefaultTau,
		GradientTol:   DefaultGradientTol,
		StepTol:       DefaultStepTol,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if len(o.InitialGuess) == 0 {
		o.InitialGuess = defaults.InitialGuess
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = defaults.MaxIterations
	}
	if o.Tau == 0 {
		o.Tau = defaults.Tau
	}
	if o.GradientTol == 0 {
		o.GradientTol = defaults.GradientTol
	}
	if o.StepTol == 0 {
		o.StepTol = defaults.StepTol
	}
	return o
}

// FitData fits scale*sin(x) + offset to (x, y) by nonlinear least squares,
// starting from scale = offset = 1. It returns the estimated parameters and
// their one standard deviation errors.
func FitData(ctx context.Context, x, y []float64) (*model.FitResult, error) {
	return FitDataWithOptions(ctx, x, y, DefaultOptions())
}

func FitDataWithOptions(ctx context.Context, x, y []float64, opts Options) (*model.FitResult, error) {
	opts = opts.withDefaults()
	if len(opts.InitialGuess) != NumParams {
		return nil, fmt.Errorf("initial guess has %d values, want %d: %w",
			len(opts.InitialGuess), NumParams, common.ErrorInvalidValue)
	}
	return curveFit(ctx, Sine, &model.Samples{X: x, Y: y}, opts)
}

// curveFit is the model independent least squares fit behind FitData.
func curveFit(ctx context.Context, f Func, samples *model.Samples, opts Options) (res *model.FitResult, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("curveFit recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			res, err = nil, fmt.Errorf("panic during fit: %v", r)
		}
	}()

	if err := samples.Validate(); err != nil {
		logger.Error("invalid fit input", zap.Error(err))
		return nil, err
	}

	p := &problem{f: f, x: samples.X, y: samples.Y}
	state, err := levenbergMarquardt(p, opts)
	if err != nil {
		logger.Error("levenberg marquardt failed", zap.Error(err),
			zap.Int("pointCnt", samples.Len()), zap.Float64s("initialGuess", opts.InitialGuess))
		return nil, err
	}

	cov, ok := covariance(state.jac, state.residuals)
	if !ok {
		logger.Warn("covariance of the parameters could not be estimated",
			zap.Int("pointCnt", samples.Len()), zap.Float64s("params", state.params))
	}

	res = &model.FitResult{
		Params:     state.params,
		Errors:     standardErrors(cov, len(state.params)),
		Iterations: state.iterations,
		Cost:       state.cost(),
		StopReason: state.reason,
	}
	logger.Debug("fit done", zap.String("result", res.DebugString()))
	return res, nil
}
