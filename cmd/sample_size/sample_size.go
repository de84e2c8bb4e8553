package sample_size

import (
	"context"
	"fmt"
	"math"

	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/stats"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "sample-size",
		Usage: "print sample size needed for estimating a proportion",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "population",
				Usage: "population size, infinite when omitted",
			},
			&cli.FloatFlag{
				Name:  "alpha",
				Usage: "alpha level (1 - confidence level)",
				Value: stats.DefaultAlphaLevel,
			},
			&cli.FloatFlag{
				Name:  "margin",
				Usage: "margin of error",
				Value: stats.DefaultMarginOfError,
			},
		},
		Action: app.Action(func(_ context.Context, cmd *cli.Command, _ *app.Env) error {
			population := cmd.Float("population")
			if !cmd.IsSet("population") {
				population = math.Inf(1)
			} else if population <= 0 {
				return fmt.Errorf("population must be positive, got %g", population)
			}

			alpha := cmd.Float("alpha")
			if alpha <= 0 || alpha >= 1 {
				return fmt.Errorf("alpha level must be in (0, 1), got %g", alpha)
			}

			margin := cmd.Float("margin")
			if margin <= 0 || margin >= 1 {
				return fmt.Errorf("margin of error must be in (0, 1), got %g", margin)
			}

			fmt.Fprintln(app.Stdout(cmd), stats.SampleSize(population, alpha, margin))
			return nil
		}),
	}
}
