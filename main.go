package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/so-sentiment/analyzer/cmd/analyze"
	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/cmd/compare"
	"github.com/so-sentiment/analyzer/cmd/database"
	"github.com/so-sentiment/analyzer/cmd/fetch"
	"github.com/so-sentiment/analyzer/cmd/fill"
	"github.com/so-sentiment/analyzer/cmd/generate_csv"
	"github.com/so-sentiment/analyzer/cmd/plot"
	"github.com/so-sentiment/analyzer/cmd/sample_size"
	"github.com/so-sentiment/analyzer/cmd/teardown"
)

func main() {
	cmd := app.NewRoot(
		teardown.Cmd(),
		fill.Cmd(),
		generate_csv.Cmd(),
		analyze.Cmd(),
		plot.Cmd(),
		compare.Cmd(),
		sample_size.Cmd(),
		database.Cmd(),
		fetch.Cmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cmd.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
