package generate_csv

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/database"
	"github.com/so-sentiment/analyzer/database/data_model"
	"github.com/so-sentiment/analyzer/query"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "generate-csv",
		Usage: "generate CSV files that Senti4SD can process",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "outpath",
				Aliases:  []string{"o"},
				Usage:    "path to output file",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "num",
				Aliases: []string{"n"},
				Usage:   "amount of documents to pick, computed from population size when omitted",
			},
			&cli.BoolFlag{
				Name:    "questions",
				Aliases: []string{"q"},
				Usage:   "generate a questions CSV file",
			},
			&cli.BoolFlag{
				Name:    "answers",
				Aliases: []string{"a"},
				Usage:   "generate an answers CSV file",
			},
			&cli.BoolFlag{
				Name:    "comments",
				Aliases: []string{"c"},
				Usage:   "generate a comments CSV file",
			},
			&cli.StringFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "a tag to filter by (e.g. 'python' or 'java'), only a single tag is supported",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "seed of random sampling, current time is used when omitted",
			},
		},
		Action: app.Action(func(_ context.Context, cmd *cli.Command, env *app.Env) error {
			options, err := getOptionsFromCmd(cmd)
			if err != nil {
				return err
			}

			db, err := env.OpenDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)

			log.Info("generating csv file ...")
			indexPath, err := query.GenerateCSV(db, options.rng, options.outpath, options.sample)
			if err != nil {
				return err
			}

			log.Infof("file generated at %s and index file at %s", options.outpath, indexPath)
			return nil
		}),
	}
}

type options struct {
	outpath string
	sample  query.SampleOptions
	rng     *rand.Rand
}

func getOptionsFromCmd(cmd *cli.Command) (options, error) {
	options := options{
		outpath: cmd.String("outpath"),
		sample: query.SampleOptions{
			Num: int(cmd.Int("num")),
			Tag: cmd.String("tag"),
		},
	}

	selected := 0
	for _, name := range []string{"questions", "answers", "comments"} {
		if cmd.Bool(name) {
			selected++
		}
	}
	if selected != 1 {
		return options, fmt.Errorf("exactly one of --questions, --answers, --comments must be given")
	}

	switch {
	case cmd.Bool("comments"):
		options.sample.Model = query.ModelComment
	case cmd.Bool("questions"):
		options.sample.Model = query.ModelPost
		options.sample.PostType = data_model.PostTypeQuestion
	default:
		options.sample.Model = query.ModelPost
		options.sample.PostType = data_model.PostTypeAnswer
	}

	if options.sample.Num < 0 {
		return options, fmt.Errorf("number of documents must not be negative, got %d", options.sample.Num)
	}

	if options.sample.Tag != "" && !query.IsConsideredTag(options.sample.Tag) {
		return options, fmt.Errorf("%w: %q not in %v", query.ErrTagNotConsidered, options.sample.Tag, query.Languages)
	}

	if cmd.IsSet("seed") {
		seed := uint64(cmd.Int("seed"))
		options.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	} else {
		options.rng = query.NewRand()
	}

	return options, nil
}
