package fill

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/database"
	"github.com/so-sentiment/analyzer/migrate"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "fill",
		Usage: "fill the database with Stack Overflow data dump files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "creation-date",
				Aliases: []string{"d"},
				Usage:   "date in form of yyyy-mm-dd, only documents created since this date are added",
			},
			&cli.StringFlag{
				Name:    "questions-xml",
				Aliases: []string{"q"},
				Usage:   "path to Posts XML file to read questions from, rows that are not questions are ignored",
			},
			&cli.StringFlag{
				Name:    "answers-xml",
				Aliases: []string{"a"},
				Usage:   "path to Posts XML file to read answers from, rows that are not answers are ignored",
			},
			&cli.StringFlag{
				Name:    "comments-xml",
				Aliases: []string{"c"},
				Usage:   "path to Comments XML file, comments are only added for posts that exist in the database",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "number of rows committed in one transaction",
				Value: migrate.DefaultBatchSize,
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "do not show progress bar",
			},
		},
		Action: app.Action(func(ctx context.Context, cmd *cli.Command, env *app.Env) error {
			sources, options, err := getOptionsFromCmd(cmd)
			if err != nil {
				return err
			}

			db, err := env.OpenDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := migrate.FillDatabase(ctx, db, sources, options); err != nil {
				return err
			}

			log.Infof("database %s filled", env.Driver)
			return nil
		}),
	}
}

func getOptionsFromCmd(cmd *cli.Command) (migrate.Sources, migrate.Options, error) {
	sources := migrate.Sources{
		Questions: cmd.String("questions-xml"),
		Answers:   cmd.String("answers-xml"),
		Comments:  cmd.String("comments-xml"),
	}
	options := migrate.Options{
		BatchSize: int(cmd.Int("batch-size")),
	}

	if sources.IsEmpty() {
		return sources, options, fmt.Errorf("no XML file specified, fill has no data to work on")
	}

	if err := app.CheckFilesExist(nonEmpty(sources.Questions, sources.Answers, sources.Comments)...); err != nil {
		return sources, options, err
	}

	if raw := cmd.String("creation-date"); raw != "" {
		since, err := time.Parse(migrate.DateLayout, raw)
		if err != nil {
			return sources, options, fmt.Errorf("invalid creation date %q, expecting yyyy-mm-dd", raw)
		}
		options.Since = &since
	}

	if !cmd.Bool("no-progress") {
		options.ProgressWriter = os.Stderr
	}

	return sources, options, nil
}

func nonEmpty(values ...string) []string {
	result := []string{}
	for _, value := range values {
		if value != "" {
			result = append(result, value)
		}
	}
	return result
}
