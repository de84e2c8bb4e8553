package analyze

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/so-sentiment/analyzer/classify"
	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/common"
	"github.com/so-sentiment/analyzer/database"
	"github.com/urfave/cli/v3"
)

const defaultOutput = "out.csv"

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "analyze a CSV file with Senti4SD",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "path to the CSV file to be analyzed",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "senti4sd-pool-root",
				Aliases: []string{"s"},
				Usage:   "path to a directory containing one or more copies of the Senti4SD repository",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "path to the output file",
				Value:   defaultOutput,
			},
			&cli.IntFlag{
				Name:    "rows-per-file",
				Aliases: []string{"rpf"},
				Usage:   "files are split into subfiles of at most this many rows before being fed to Senti4SD, to avoid running out of memory",
			},
		},
		Action: app.Action(func(ctx context.Context, cmd *cli.Command, env *app.Env) error {
			options, err := getOptionsFromCmd(cmd, env)
			if err != nil {
				return err
			}

			db, err := env.OpenDatabase()
			if err != nil {
				return err
			}
			database.Close(db)

			common.LogBannerMsg([]string{
				"input:         " + options.input,
				"output:        " + options.output,
				"pool root:     " + options.poolRoot,
				"rows per file: " + strconv.Itoa(options.rowsPerFile),
			}, 2)

			if err := classify.ClassifySentiment(ctx, options.rowsPerFile, options.poolRoot, options.input, options.output); err != nil {
				return err
			}

			log.Infof("predictions written to %s", options.output)
			return nil
		}),
	}
}

type options struct {
	input       string
	output      string
	poolRoot    string
	rowsPerFile int
}

func getOptionsFromCmd(cmd *cli.Command, env *app.Env) (options, error) {
	options := options{
		rowsPerFile: env.Config.GetRowsPerFile(),
	}

	if cmd.IsSet("rows-per-file") {
		options.rowsPerFile = int(cmd.Int("rows-per-file"))
	}
	if options.rowsPerFile <= 0 {
		return options, fmt.Errorf("at least 1 row per file is required")
	}

	input, err := filepath.Abs(cmd.String("input"))
	if err != nil {
		return options, err
	}
	if err := app.CheckFilesExist(input); err != nil {
		return options, err
	}
	options.input = input

	poolRoot := common.GetStrOr(cmd.String("senti4sd-pool-root"), env.Config.Senti4SDPoolRoot)
	if poolRoot == "" {
		return options, fmt.Errorf("no Senti4SD pool root given")
	}
	if options.poolRoot, err = filepath.Abs(poolRoot); err != nil {
		return options, err
	}
	if !common.IsDir(options.poolRoot) {
		return options, fmt.Errorf("Senti4SD pool root %s is not a directory", options.poolRoot)
	}

	if options.output, err = filepath.Abs(cmd.String("output")); err != nil {
		return options, err
	}

	return options, nil
}
