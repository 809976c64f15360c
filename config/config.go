package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/uyouii/sinefit/common"
	"github.com/uyouii/sinefit/fitter"
	"github.com/uyouii/sinefit/render"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v2"
)

const EnvPrefix = "SINEFIT"

// Config is the process configuration. Values come from Default, then the
// optional YAML file named by SINEFIT_CONFIG_FILE, then SINEFIT_* variables.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Fit     FitConfig     `yaml:"fit" envconfig:"FIT"`
	Plot    PlotConfig    `yaml:"plot" envconfig:"PLOT"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

type FitConfig struct {
	InitialGuess  []float64 `yaml:"initial_guess" envconfig:"INITIAL_GUESS"`
	MaxIterations int       `yaml:"max_iterations" envconfig:"MAX_ITERATIONS"`
	Tau           float64   `yaml:"tau" envconfig:"TAU"`
	GradientTol   float64   `yaml:"gradient_tol" envconfig:"GRADIENT_TOL"`
	StepTol       float64   `yaml:"step_tol" envconfig:"STEP_TOL"`
}

type PlotConfig struct {
	WidthInches  float64 `yaml:"width_inches" envconfig:"WIDTH_INCHES"`
	HeightInches float64 `yaml:"height_inches" envconfig:"HEIGHT_INCHES"`
	CurvePoints  int     `yaml:"curve_points" envconfig:"CURVE_POINTS"`
	Output       string  `yaml:"output" envconfig:"OUTPUT"`
}

type fileLocation struct {
	ConfigFile string `envconfig:"CONFIG_FILE"`
}

func Default() Config {
	opts := fitter.DefaultOptions()
	return Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Fit: FitConfig{
			InitialGuess:  opts.InitialGuess,
			MaxIterations: opts.MaxIterations,
			Tau:           opts.Tau,
			GradientTol:   opts.GradientTol,
			StepTol:       opts.StepTol,
		},
		Plot: PlotConfig{
			WidthInches:  12,
			HeightInches: 6,
			CurvePoints:  render.DefaultCurvePoints,
			Output:       render.DefaultOutput,
		},
	}
}

func Load() (*Config, error) {
	cfg := Default()

	var location fileLocation
	if err := envconfig.Process(EnvPrefix, &location); err != nil {
		return nil, fmt.Errorf("failed to load config file location from env: %w", err)
	}
	if location.ConfigFile != "" {
		if err := loadFromFile(location.ConfigFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// no default tags, so only variables that are set override
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorFileNotFound, err)
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	var err error

	if _, lerr := zapcore.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}

	if len(c.Fit.InitialGuess) != fitter.NumParams {
		err = multierr.Append(err, fmt.Errorf("fit.initial_guess: want %d values, got %d",
			fitter.NumParams, len(c.Fit.InitialGuess)))
	}
	if c.Fit.MaxIterations <= 0 {
		err = multierr.Append(err, fmt.Errorf("fit.max_iterations: must be positive, got %d", c.Fit.MaxIterations))
	}
	if c.Fit.Tau <= 0 {
		err = multierr.Append(err, fmt.Errorf("fit.tau: must be positive, got %v", c.Fit.Tau))
	}
	if c.Fit.GradientTol <= 0 {
		err = multierr.Append(err, fmt.Errorf("fit.gradient_tol: must be positive, got %v", c.Fit.GradientTol))
	}
	if c.Fit.StepTol <= 0 {
		err = multierr.Append(err, fmt.Errorf("fit.step_tol: must be positive, got %v", c.Fit.StepTol))
	}

	if c.Plot.WidthInches <= 0 || c.Plot.HeightInches <= 0 {
		err = multierr.Append(err, fmt.Errorf("plot: size must be positive, got %vx%v",
			c.Plot.WidthInches, c.Plot.HeightInches))
	}
	if c.Plot.CurvePoints < 2 {
		err = multierr.Append(err, fmt.Errorf("plot.curve_points: need at least 2, got %d", c.Plot.CurvePoints))
	}
	if c.Plot.Output == "" {
		err = multierr.Append(err, fmt.Errorf("plot.output: must not be empty"))
	}

	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInvalidConfig, err)
	}
	return nil
}

func (c FitConfig) Options() fitter.Options {
	guess := make([]float64, len(c.InitialGuess))
	copy(guess, c.InitialGuess)
	return fitter.Options{
		InitialGuess:  guess,
		MaxIterations: c.MaxIterations,
		Tau:           c.Tau,
		GradientTol:   c.GradientTol,
		StepTol:       c.StepTol,
	}
}

func (c PlotConfig) Style() render.Style {
	style := render.DefaultStyle()
	style.Width = vg.Length(c.WidthInches) * vg.Inch
	style.Height = vg.Length(c.HeightInches) * vg.Inch
	style.CurvePoints = c.CurvePoints
	style.Output = c.Output
	return style
}
