package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uyouii/sinefit/config"
	"github.com/uyouii/sinefit/fitter"
	"github.com/uyouii/sinefit/loader"
	"github.com/uyouii/sinefit/render"
	"github.com/uyouii/sinefit/utils"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <data.csv>\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := utils.InitLogger(cfg.Logging.Level, cfg.Logging.Development); err != nil {
		fmt.Fprintf(os.Stderr, "error building logger: %v\n", err)
		os.Exit(1)
	}

	err = run(context.Background(), cfg, os.Args[1])
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the whole pipeline: load, fit, render.
func run(ctx context.Context, cfg *config.Config, fn string) error {
	logger := utils.GetLogger(ctx)

	samples, err := loader.LoadSamples(ctx, fn)
	if err != nil {
		return err
	}

	result, err := fitter.FitDataWithOptions(ctx, samples.X, samples.Y, cfg.Fit.Options())
	if err != nil {
		return err
	}
	logger.Info("fit success", zap.Float64s("params", result.Params), zap.Float64s("errors", result.Errors),
		zap.Int("iterations", result.Iterations), zap.Stringer("stopReason", result.StopReason))

	return render.Render(ctx, cfg.Plot.Style(), samples.X, samples.Y, result)
}
