package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/uyouii/sinefit/common"
)

// Table is a delimited file kept as raw records; columns are parsed
// as numbers on access.
type Table struct {
	Header  []string
	Records [][]string

	index map[string]int
}

func NewTable(header []string, records [][]string) *Table {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	return &Table{
		Header:  header,
		Records: records,
		index:   index,
	}
}

func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// Column parses the named column as floats. Blank cells become NaN.
func (t *Table) Column(name string) ([]float64, error) {
	if !t.HasColumn(name) {
		return nil, fmt.Errorf("column %q: %w", name, common.ErrorMissingColumn)
	}
	col := t.index[name]

	res := make([]float64, len(t.Records))
	for i, record := range t.Records {
		cell := strings.TrimSpace(record[col])
		if cell == "" {
			res[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			// header is line 1
			return nil, fmt.Errorf("column %q line %d: %q: %w", name, i+2, cell, common.ErrorInvalidValue)
		}
		res[i] = v
	}
	return res, nil
}

func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

func (t *Table) DebugString() string {
	return fmt.Sprintf("header: %+v, rowCount: %+v", t.Header, t.RowCount())
}

// Samples holds paired observations, Y[i] measured at X[i].
type Samples struct {
	X []float64
	Y []float64
}

func (s *Samples) Len() int {
	if s == nil {
		return 0
	}
	return len(s.X)
}

// Validate checks the pairing and finiteness required by the fitter.
func (s *Samples) Validate() error {
	if s.Len() == 0 {
		return fmt.Errorf("empty samples: %w", common.ErrorInvalidValue)
	}
	if len(s.X) != len(s.Y) {
		return fmt.Errorf("len(x)=%d != len(y)=%d: %w", len(s.X), len(s.Y), common.ErrorInvalidValue)
	}
	for i := range s.X {
		if math.IsNaN(s.X[i]) || math.IsInf(s.X[i], 0) {
			return fmt.Errorf("x[%d]=%v is not finite: %w", i, s.X[i], common.ErrorInvalidValue)
		}
		if math.IsNaN(s.Y[i]) || math.IsInf(s.Y[i], 0) {
			return fmt.Errorf("y[%d]=%v is not finite: %w", i, s.Y[i], common.ErrorInvalidValue)
		}
	}
	return nil
}

type StopReason int

const (
	GradientConverged StopReason = 1
	StepConverged     StopReason = 2
)

func (r StopReason) String() string {
	switch r {
	case GradientConverged:
		return "gradient"
	case StepConverged:
		return "step"
	}
	return "unknown"
}

// FitResult holds the parameter estimates of scale*sin(x)+offset and
// their one standard deviation errors, in the order (scale, offset).
type FitResult struct {
	Params []float64 `json:"params"`
	Errors []float64 `json:"errors"`

	Iterations int        `json:"iterations,omitempty"`
	Cost       float64    `json:"cost,omitempty"` // 0.5 * sum of squared residuals
	StopReason StopReason `json:"stop_reason,omitempty"`
}

func (r *FitResult) Scale() float64 {
	return r.Params[0]
}

func (r *FitResult) Offset() float64 {
	return r.Params[1]
}

func (r *FitResult) DebugString() string {
	return fmt.Sprintf("params: %+v, errors: %+v, iterations: %v, cost: %v, stop: %v",
		r.Params, r.Errors, r.Iterations, r.Cost, r.StopReason)
}
