// Package plot draws sentiment proportions of prediction files as grouped bar
// charts with confidence intervals.
package plot

import (
	"fmt"
	"image/color"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/so-sentiment/analyzer/stats"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	DefaultOutput = "predictions_plot"
	DefaultWidth  = 0.5
	defaultExt    = ".svg"
)

// extensions written as is, any other output name gets defaultExt appended
var supportedExts = []string{".svg", ".png", ".pdf"}

var (
	canvasWidth  = 8 * vg.Inch
	canvasHeight = 5 * vg.Inch
)

type Options struct {
	Inputs     []string
	AlphaLevel float64
	Output     string
	// Total width taken by all bars of one sentiment class, in units of
	// distance between classes.
	Width    float64
	Fill     bool
	Patterns bool
	// Nil means all subpopulations are infinite.
	Population stats.Population
}

// OutputPath returns file name plot is saved to.
func OutputPath(output string) string {
	if output == "" {
		output = DefaultOutput
	}

	ext := strings.ToLower(filepath.Ext(output))
	if slices.Contains(supportedExts, ext) {
		return output
	}

	return output + defaultExt
}

// ReadTables computes statistics table of every input file.
func ReadTables(inputs []string, alphaLevel float64, population stats.Population) ([]stats.Table, error) {
	tables := make([]stats.Table, 0, len(inputs))

	for _, path := range inputs {
		size, err := population.For(path)
		if err != nil {
			return nil, err
		}

		table, err := stats.NewTableFromPredictionsCSV(path, alphaLevel, stats.NameFromFilename(path), size)
		if err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	return tables, nil
}

// newSeries lays out one bar series per table. Bars of one sentiment class
// are centered on the class tick.
func newSeries(tables []stats.Table, options Options) []*barSeries {
	width := options.Width
	if width <= 0 {
		width = DefaultWidth
	}
	barWidth := width / float64(len(tables))

	allSeries := make([]*barSeries, 0, len(tables))
	for i, table := range tables {
		series := &barSeries{
			Width:      barWidth,
			LineStyle:  draw.LineStyle{Color: color.Black, Width: vg.Points(1)},
			ErrorStyle: draw.LineStyle{Color: color.Black, Width: vg.Points(1)},
			CapWidth:   vg.Points(6),
		}

		if options.Fill {
			series.FillColor = plotutil.Color(i)
		}
		// first default dash pattern is a solid line
		if options.Patterns {
			series.LineStyle.Width = vg.Points(1.5)
			series.LineStyle.Dashes = plotutil.Dashes(i + 1)
		}

		offset := -width/2 + (float64(i)+0.5)*barWidth
		for classIndex, sentiment := range stats.Sentiments {
			class := table.Class(sentiment)
			series.Xs = append(series.Xs, float64(classIndex)+offset)
			series.Heights = append(series.Heights, class.Proportion)
			series.Errors = append(series.Errors, class.MarginOfError)
		}

		allSeries = append(allSeries, series)
	}

	return allSeries
}

// NewPlot builds a grouped bar chart from statistics tables, one series per
// table.
func NewPlot(tables []stats.Table, options Options) *gplot.Plot {
	p := gplot.New()
	p.Title.Text = "Sentiment proportions"
	p.Y.Label.Text = "Proportion"
	p.X.Label.Text = "Sentiment"
	p.Legend.Top = true

	for i, series := range newSeries(tables, options) {
		p.Add(series)
		p.Legend.Add(tables[i].Name, series)
	}

	names := make([]string, 0, len(stats.Sentiments))
	for _, sentiment := range stats.Sentiments {
		names = append(names, sentiment.String())
	}
	p.NominalX(names...)
	p.Y.Min = 0

	return p
}

// PlotPredictions plots prediction files and saves the chart. Returns path to
// saved file.
func PlotPredictions(options Options) (string, error) {
	if len(options.Inputs) == 0 {
		return "", fmt.Errorf("no input files to plot")
	}

	tables, err := ReadTables(options.Inputs, options.AlphaLevel, options.Population)
	if err != nil {
		return "", err
	}

	for _, table := range tables {
		for _, class := range table.Classes {
			log.Infof("%s %s: %.4f ± %.4f", table.Name, class.Sentiment, class.Proportion, class.MarginOfError)
		}
	}

	outpath := OutputPath(options.Output)
	p := NewPlot(tables, options)
	if err := p.Save(canvasWidth, canvasHeight, outpath); err != nil {
		return "", fmt.Errorf("failed to save plot to %s: %s", outpath, err)
	}

	log.Infof("plot saved to %s", outpath)

	return outpath, nil
}
