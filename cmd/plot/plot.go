package plot

import (
	"context"
	"fmt"

	"github.com/so-sentiment/analyzer/cmd/app"
	predplot "github.com/so-sentiment/analyzer/plot"
	"github.com/so-sentiment/analyzer/stats"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "plot",
		Usage: "plot sentiment probabilities given a list of prediction CSV files",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "prediction CSV file to be plotted, can be given multiple times",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "population",
				Aliases: []string{"pop"},
				Usage: "JSON file of subpopulation sizes used to calculate confidence intervals, " +
					"keys are matched against the part of input file names before the first underscore. " +
					"When omitted all subpopulations are infinite",
			},
			&cli.FloatFlag{
				Name:    "alpha-level",
				Aliases: []string{"a"},
				Usage:   "alpha level (1 - confidence level) of the analysis",
				Value:   stats.DefaultAlphaLevel,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "name of the output file, .svg is appended unless it ends with .svg, .png or .pdf",
				Value:   predplot.DefaultOutput,
			},
			&cli.FloatFlag{
				Name:    "width",
				Aliases: []string{"w"},
				Usage:   "width of each sentiment class in the plot",
				Value:   predplot.DefaultWidth,
			},
			&cli.BoolFlag{
				Name:    "fill",
				Aliases: []string{"f"},
				Usage:   "fill bars in the plot with colors",
			},
			&cli.BoolFlag{
				Name:    "patterns",
				Aliases: []string{"p"},
				Usage:   "draw bars in the plot with distinct outline patterns",
			},
		},
		Action: app.Action(func(_ context.Context, cmd *cli.Command, _ *app.Env) error {
			options, err := getOptionsFromCmd(cmd)
			if err != nil {
				return err
			}

			_, err = predplot.PlotPredictions(options)
			return err
		}),
	}
}

func getOptionsFromCmd(cmd *cli.Command) (predplot.Options, error) {
	options := predplot.Options{
		Inputs:     cmd.StringSlice("input"),
		AlphaLevel: cmd.Float("alpha-level"),
		Output:     cmd.String("output"),
		Width:      cmd.Float("width"),
		Fill:       cmd.Bool("fill"),
		Patterns:   cmd.Bool("patterns"),
	}

	if err := app.CheckFilesExist(options.Inputs...); err != nil {
		return options, err
	}

	if options.AlphaLevel <= 0 || options.AlphaLevel >= 1 {
		return options, fmt.Errorf("alpha level must be in (0, 1), got %g", options.AlphaLevel)
	}

	if options.Width <= 0 {
		return options, fmt.Errorf("width must be positive, got %g", options.Width)
	}

	if populationFile := cmd.String("population"); populationFile != "" {
		if err := app.CheckFilesExist(populationFile); err != nil {
			return options, err
		}

		population, err := stats.ParsePopulation(populationFile)
		if err != nil {
			return options, err
		}
		options.Population = population
	}

	return options, nil
}
