package render

import (
	"context"
	"fmt"

	"github.com/uyouii/sinefit/common"
	"github.com/uyouii/sinefit/fitter"
	"github.com/uyouii/sinefit/model"
	"github.com/uyouii/sinefit/utils"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
)

// Title annotates the fitted parameters with their one sigma errors.
func Title(result *model.FitResult) string {
	return fmt.Sprintf("f(x) = a × sin(x) + b, with a = %.2f ± %.2f, b = %.2f ± %.2f",
		result.Params[0], result.Errors[0], result.Params[1], result.Errors[1])
}

// NewPlot builds the data scatter and the fitted curve. The curve is
// evaluated on style.CurvePoints points spanning [min(x), max(x)].
func NewPlot(style Style, x, y []float64, result *model.FitResult) (*plot.Plot, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("len(x)=%d, len(y)=%d: %w", len(x), len(y), common.ErrorInvalidValue)
	}
	if result == nil || len(result.Params) != fitter.NumParams || len(result.Errors) != fitter.NumParams {
		return nil, fmt.Errorf("fit result incomplete: %w", common.ErrorInvalidValue)
	}

	data := make(plotter.XYs, len(x))
	for i := range x {
		data[i].X = x[i]
		data[i].Y = y[i]
	}
	scatter, err := plotter.NewScatter(data)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = style.DataColor
	scatter.GlyphStyle.Radius = style.MarkerRadius

	lo, hi := utils.MinMax(x)
	grid := utils.Linspace(lo, hi, style.CurvePoints)
	fitted := fitter.ModelFunctionSlice(grid, result.Scale(), result.Offset())
	curve := make(plotter.XYs, len(grid))
	for i := range grid {
		curve[i].X = grid[i]
		curve[i].Y = fitted[i]
	}
	line, err := plotter.NewLine(curve)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = style.FitColor
	line.LineStyle.Width = style.LineWidth
	line.LineStyle.Dashes = style.Dashes

	p := plot.New()
	p.Title.Text = Title(result)
	p.Title.TextStyle.Font.Size = style.TitleFontSize
	p.X.Label.Text = "x"
	p.X.Label.TextStyle.Font.Size = style.LabelFontSize
	p.Y.Label.Text = "y"
	p.Y.Label.TextStyle.Font.Size = style.LabelFontSize

	p.Add(scatter, line)
	p.Legend.Add("data", scatter)
	p.Legend.Add("fit", line)
	p.Legend.Top = true

	return p, nil
}

// Render draws the fit against the measurements and saves it to
// style.Output; the image format follows the file extension.
func Render(ctx context.Context, style Style, x, y []float64, result *model.FitResult) error {
	logger := utils.GetLogger(ctx)

	p, err := NewPlot(style, x, y, result)
	if err != nil {
		logger.Error("build plot failed", zap.Error(err))
		return err
	}

	if err := p.Save(style.Width, style.Height, style.Output); err != nil {
		logger.Error("save plot failed", zap.String("output", style.Output), zap.Error(err))
		return err
	}

	logger.Info("render plot success", zap.String("output", style.Output))
	return nil
}
