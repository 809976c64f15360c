package render

import (
	"image/color"

	"gonum.org/v1/plot/vg"
)

// Style is the visual configuration of a rendered fit, built once at
// startup and handed to Render.
type Style struct {
	Width  vg.Length
	Height vg.Length

	// CurvePoints is how many points the fitted curve is evaluated on.
	CurvePoints int

	// Output is the image path; png, svg, pdf, eps, jpg and tif are known.
	Output string

	DataColor    color.Color
	FitColor     color.Color
	MarkerRadius vg.Length
	LineWidth    vg.Length
	Dashes       []vg.Length

	TitleFontSize vg.Length
	LabelFontSize vg.Length
}

func DefaultStyle() Style {
	return Style{
		Width:         12 * vg.Inch,
		Height:        6 * vg.Inch,
		CurvePoints:   DefaultCurvePoints,
		Output:        DefaultOutput,
		DataColor:     color.RGBA{R: 31, G: 119, B: 180, A: 255},
		FitColor:      color.RGBA{R: 255, G: 127, B: 14, A: 255},
		MarkerRadius:  vg.Points(4),
		LineWidth:     vg.Points(2),
		Dashes:        []vg.Length{vg.Points(8), vg.Points(4)},
		TitleFontSize: vg.Points(16),
		LabelFontSize: vg.Points(14),
	}
}

const (
	DefaultCurvePoints = 500
	DefaultOutput      = "fit.png"
)
