package database

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/database"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "database",
		Usage: "database management utility",
		Commands: []*cli.Command{
			subcmdExport(),
			subcmdMigrate(),
		},
	}
}

func subcmdExport() *cli.Command {
	var tableName string
	var csvFilePath string

	return &cli.Command{
		Name:  "export",
		Usage: "export a table as CSV",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "table-name",
				UsageText:   "<table>",
				Destination: &tableName,
				Min:         1,
				Max:         1,
			},
			&cli.StringArg{
				Name:        "csv-file",
				UsageText:   " <csv>",
				Destination: &csvFilePath,
				Min:         1,
				Max:         1,
			},
		},
		Action: app.Action(func(_ context.Context, _ *cli.Command, env *app.Env) error {
			db, err := env.OpenDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.ExportCSV(db, tableName, csvFilePath); err != nil {
				return err
			}

			log.Infof("table %s exported to %s", tableName, csvFilePath)
			return nil
		}),
	}
}

func subcmdMigrate() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create missing tables",
		Action: app.Action(func(_ context.Context, _ *cli.Command, env *app.Env) error {
			db, err := env.OpenDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)

			log.Infof("database %s is up to date", env.Driver)
			return nil
		}),
	}
}
