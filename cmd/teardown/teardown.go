package teardown

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/database"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "teardown",
		Usage: "tear down the database",
		Action: app.Action(func(_ context.Context, _ *cli.Command, env *app.Env) error {
			db, err := env.OpenDatabase()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Teardown(db); err != nil {
				return err
			}

			log.Infof("database %s torn down", env.Driver)
			return nil
		}),
	}
}
