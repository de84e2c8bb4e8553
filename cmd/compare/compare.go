package compare

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/so-sentiment/analyzer/cmd/app"
	predplot "github.com/so-sentiment/analyzer/plot"
	"github.com/so-sentiment/analyzer/stats"
	"github.com/urfave/cli/v3"
)

const defaultConfidenceLevel = 0.95

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "print sentiment statistics of prediction files and test whether sentiment is independent of file",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "prediction CSV file, must be given at least twice",
				Required: true,
			},
			&cli.FloatFlag{
				Name:  "confidence",
				Usage: "confidence level of the chi-squared test and of the margins of error",
				Value: defaultConfidenceLevel,
			},
			&cli.StringFlag{
				Name:    "population",
				Aliases: []string{"pop"},
				Usage:   "JSON file of subpopulation sizes, see plot command",
			},
		},
		Action: app.Action(func(_ context.Context, cmd *cli.Command, _ *app.Env) error {
			options, err := getOptionsFromCmd(cmd)
			if err != nil {
				return err
			}

			return compare(app.Stdout(cmd), options)
		}),
	}
}

type options struct {
	inputs     []string
	confidence float64
	population stats.Population
}

func getOptionsFromCmd(cmd *cli.Command) (options, error) {
	options := options{
		inputs:     cmd.StringSlice("input"),
		confidence: cmd.Float("confidence"),
	}

	if len(options.inputs) < 2 {
		return options, fmt.Errorf("at least 2 input files are required, got %d", len(options.inputs))
	}

	if err := app.CheckFilesExist(options.inputs...); err != nil {
		return options, err
	}

	if options.confidence <= 0 || options.confidence >= 1 {
		return options, fmt.Errorf("confidence level must be in (0, 1), got %g", options.confidence)
	}

	if populationFile := cmd.String("population"); populationFile != "" {
		population, err := stats.ParsePopulation(populationFile)
		if err != nil {
			return options, err
		}
		options.population = population
	}

	return options, nil
}

func compare(out io.Writer, options options) error {
	tables, err := predplot.ReadTables(options.inputs, 1-options.confidence, options.population)
	if err != nil {
		return err
	}

	for _, t := range tables {
		fmt.Fprintln(out, renderTable(t))
	}

	result, err := stats.Chi2Independence(options.inputs, options.confidence)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "chi2 = %.4f, dof = %d, p-value = %.4g\n", result.Statistic, result.DegreesOfFreedom, result.PValue)
	if result.Independent {
		fmt.Fprintf(out, "independence not rejected at %g confidence level\n", options.confidence)
	} else {
		fmt.Fprintf(out, "independence rejected at %g confidence level\n", options.confidence)
	}

	return nil
}

func renderTable(t stats.Table) string {
	population := "inf"
	if !math.IsInf(t.Population, 1) {
		population = fmt.Sprintf("%.0f", t.Population)
	}

	rows := make([][]string, 0, len(t.Classes))
	for _, class := range t.Classes {
		rows = append(rows, []string{
			class.Sentiment.String(),
			fmt.Sprint(class.Count),
			fmt.Sprintf("%.4f", class.Proportion),
			fmt.Sprintf("%.4f", class.MarginOfError),
		})
	}

	rendered := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("sentiment", "count", "proportion", "margin of error").
		Rows(rows...).
		String()

	return fmt.Sprintf("%s (n = %d, N = %s)\n%s", t.Name, t.SampleSize, population, rendered)
}
