// Package app holds state shared by all sub-commands: root flags, logger
// set up and database connection.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/so-sentiment/analyzer/common"
	"github.com/so-sentiment/analyzer/config"
	"github.com/so-sentiment/analyzer/database"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

const (
	FlagDriver   = "driver"
	FlagConfig   = "config"
	FlagLogLevel = "log-level"
	FlagLogFile  = "log-file"
)

// RootFlags returns flags understood by root command.
func RootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagDriver,
			Aliases: []string{"d"},
			Usage:   "database driver, one of " + strings.Join(database.DriverNames(), ", "),
			Value:   string(database.DriverDev),
		},
		&cli.StringFlag{
			Name:  FlagConfig,
			Usage: "path to JSON config file",
			Value: config.DefaultConfigFile,
		},
		&cli.StringFlag{
			Name:  FlagLogLevel,
			Usage: "log level, one of debug, info, warn, error",
			Value: "info",
		},
		&cli.StringFlag{
			Name:  FlagLogFile,
			Usage: "also write log to this file",
		},
	}
}

// Env is the environment a sub-command action runs in.
type Env struct {
	Config config.Config
	Driver database.Driver

	logFile *os.File
}

// ActionFunc is action of a sub-command that needs shared environment.
type ActionFunc func(ctx context.Context, cmd *cli.Command, env *Env) error

// Action wraps fn into a cli action that prepares Env first.
func Action(fn ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		env, err := NewEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return fn(ctx, cmd, env)
	}
}

// NewEnv reads root flags, config file and dotenv file, then installs default
// logger.
func NewEnv(cmd *cli.Command) (*Env, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	driver, err := database.ParseDriver(cmd.String(FlagDriver))
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cmd.String(FlagConfig), cmd.IsSet(FlagConfig))
	if err != nil {
		return nil, err
	}

	env := &Env{
		Config: cfg,
		Driver: driver,
	}

	logFile := cmd.String(FlagLogFile)
	if logFile == "" {
		logFile = cfg.LogFile
	}
	if err := env.setupLogger(cmd.String(FlagLogLevel), logFile); err != nil {
		return nil, err
	}

	return env, nil
}

func (env *Env) setupLogger(level string, logFile string) error {
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %s", level, err)
	}

	var output io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %s", logFile, err)
		}
		env.logFile = file
		output = io.MultiWriter(os.Stderr, file)
	}

	log.SetDefault(log.NewWithOptions(output, log.Options{
		Level:           logLevel,
		ReportTimestamp: true,
	}))

	return nil
}

// Close releases log file, logging goes back to stderr only.
func (env *Env) Close() error {
	if env.logFile == nil {
		return nil
	}

	log.SetOutput(os.Stderr)
	err := env.logFile.Close()
	env.logFile = nil

	return err
}

// OpenDatabase connects to database of selected driver, creating missing
// tables.
func (env *Env) OpenDatabase() (*gorm.DB, error) {
	uri, err := env.Config.DatabaseURIFor(env.Driver)
	if err != nil {
		return nil, err
	}

	log.Debugf("using %s database at %s", env.Driver, uri)

	return database.Open(uri)
}

// CheckFilesExist reports first path in paths that is not a regular file.
func CheckFilesExist(paths ...string) error {
	for _, path := range paths {
		if !common.IsFile(path) {
			return fmt.Errorf("file %s does not exist", path)
		}
	}
	return nil
}

// NewRoot makes root command of analyzer with given sub-commands.
func NewRoot(commands ...*cli.Command) *cli.Command {
	return &cli.Command{
		Name:     "analyzer",
		Usage:    "sentiment analysis of Stack Overflow posts with Senti4SD",
		Version:  "0.1.0",
		Flags:    RootFlags(),
		Commands: commands,
	}
}

// Stdout returns writer for command output, which is the root command's
// writer. Sub-commands always get a default writer of their own, so only the
// root one reflects what caller set.
func Stdout(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}
