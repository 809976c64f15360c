package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/uyouii/sinefit/common"
	"github.com/uyouii/sinefit/model"
	"github.com/uyouii/sinefit/utils"
	"go.uber.org/zap"
)

const (
	Separator = ','

	ColumnX = "x"
	ColumnY = "y"
)

// LoadData reads a comma separated file whose first row is the header.
func LoadData(ctx context.Context, fn string) (*model.Table, error) {
	logger := utils.GetLogger(ctx)

	f, err := os.Open(fn)
	if err != nil {
		logger.Error("open data file failed", zap.String("fn", fn), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", common.ErrorFileNotFound, err)
	}
	defer f.Close()

	table, err := ReadData(f)
	if err != nil {
		logger.Error("read data file failed", zap.String("fn", fn), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", fn, err)
	}

	logger.Info("load data success", zap.String("fn", fn), zap.String("table", table.DebugString()))
	return table, nil
}

func ReadData(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = Separator
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header row: %w", common.ErrorInvalidValue)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInvalidValue, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	// a UTF-8 byte order mark would otherwise stick to the first name
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInvalidValue, err)
	}

	return model.NewTable(header, records), nil
}

// Samples extracts the x and y columns of table.
func Samples(table *model.Table) (*model.Samples, error) {
	x, err := table.Column(ColumnX)
	if err != nil {
		return nil, err
	}
	y, err := table.Column(ColumnY)
	if err != nil {
		return nil, err
	}
	return &model.Samples{X: x, Y: y}, nil
}

func LoadSamples(ctx context.Context, fn string) (*model.Samples, error) {
	table, err := LoadData(ctx, fn)
	if err != nil {
		return nil, err
	}
	return Samples(table)
}
