package plot

import (
	"image/color"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// barSeries draws one bar per sentiment class at data coordinates, together
// with an error bar on top of each.
type barSeries struct {
	// center X of each bar
	Xs      []float64
	Heights []float64
	Errors  []float64
	// bar width in data units
	Width float64

	FillColor  color.Color // nil means bars are not filled
	LineStyle  draw.LineStyle
	ErrorStyle draw.LineStyle
	CapWidth   vg.Length
}

func (b *barSeries) Plot(c draw.Canvas, plt *gplot.Plot) {
	trX, trY := plt.Transforms(&c)

	for i, x := range b.Xs {
		left, right := trX(x-b.Width/2), trX(x+b.Width/2)
		bottom, top := trY(0), trY(b.Heights[i])

		outline := []vg.Point{
			{X: left, Y: bottom},
			{X: left, Y: top},
			{X: right, Y: top},
			{X: right, Y: bottom},
		}

		if b.FillColor != nil {
			c.FillPolygon(b.FillColor, c.ClipPolygonXY(outline))
		}
		c.StrokeLines(b.LineStyle, c.ClipLinesXY(append(outline, outline[0]))...)

		if b.Errors[i] <= 0 {
			continue
		}

		center := trX(x)
		low, high := trY(b.Heights[i]-b.Errors[i]), trY(b.Heights[i]+b.Errors[i])
		half := b.CapWidth / 2
		c.StrokeLines(b.ErrorStyle,
			[]vg.Point{{X: center, Y: low}, {X: center, Y: high}},
			[]vg.Point{{X: center - half, Y: low}, {X: center + half, Y: low}},
			[]vg.Point{{X: center - half, Y: high}, {X: center + half, Y: high}},
		)
	}
}

// DataRange makes room for full width of outer bars and top of error bars.
func (b *barSeries) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(b.Xs) == 0 {
		return 0, 0, 0, 0
	}

	xmin, xmax = b.Xs[0]-b.Width/2, b.Xs[0]+b.Width/2
	for i, x := range b.Xs {
		xmin = min(xmin, x-b.Width/2)
		xmax = max(xmax, x+b.Width/2)
		ymax = max(ymax, b.Heights[i]+b.Errors[i])
	}

	return xmin, xmax, 0, ymax
}

// Thumbnail draws legend entry of the series.
func (b *barSeries) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}

	if b.FillColor != nil {
		c.FillPolygon(b.FillColor, c.ClipPolygonY(pts))
	}
	c.StrokeLines(b.LineStyle, c.ClipLinesY(append(pts, pts[0]))...)
}
