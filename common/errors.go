package common

import "errors"

var (
	ErrorInvalidValue  = errors.New("invalid value")
	ErrorFileNotFound  = errors.New("file not found")
	ErrorMissingColumn = errors.New("missing column")
	ErrorNotConverged  = errors.New("fit did not converge")
	ErrorInvalidConfig = errors.New("invalid config")
)
