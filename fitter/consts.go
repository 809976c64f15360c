package fitter

const (
	// scale, offset
	NumParams = 2

	DefaultMaxIterations = 200
	DefaultTau           = 1e-3
	DefaultGradientTol   = 1e-10
	DefaultStepTol       = 1e-10
)
