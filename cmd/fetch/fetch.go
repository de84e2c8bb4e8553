package fetch

import (
	"context"

	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/common"
	"github.com/so-sentiment/analyzer/fetch"
	"github.com/urfave/cli/v3"
)

func Cmd() *cli.Command {
	var url string
	var outputPath string

	return &cli.Command{
		Name:  "fetch",
		Usage: "download a data dump file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "proxy",
				Usage: "proxy URL, e.g. http://127.0.0.1:1080",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "request timeout",
				Value: fetch.DefaultTimeout,
			},
			&cli.IntFlag{
				Name:  "retry",
				Usage: "max retry count",
				Value: fetch.DefaultRetry,
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "url",
				UsageText:   "<url>",
				Destination: &url,
				Min:         1,
				Max:         1,
			},
			&cli.StringArg{
				Name:        "output",
				UsageText:   " <output>",
				Destination: &outputPath,
				Min:         1,
				Max:         1,
			},
		},
		Action: app.Action(func(_ context.Context, cmd *cli.Command, env *app.Env) error {
			options := fetch.Options{
				Proxy:   common.GetStrOr(cmd.String("proxy"), env.Config.HttpProxy),
				Timeout: cmd.Duration("timeout"),
				Retry:   int(cmd.Int("retry")),
			}

			if !cmd.IsSet("retry") && env.Config.RetryCount > 0 {
				options.Retry = env.Config.RetryCount
			}
			if options.Timeout <= 0 {
				options.Timeout = fetch.DefaultTimeout
			}

			return fetch.Download(url, outputPath, options)
		}),
	}
}
