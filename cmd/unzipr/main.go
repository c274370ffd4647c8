package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unzipr/unzipr/internal/unzip"
	"github.com/urfave/cli/v3"
)

// Exit codes form the tool's contract with calling scripts.
const (
	exitGeneric      = 1
	exitMissingFile  = 2
	exitInvalidInput = 3
	exitBadArchive   = 4
)

// errUsage tags argument-parsing failures so they exit with the
// invalid-input code rather than the generic one.
var errUsage = errors.New("invalid arguments")

var loggerDeferFunc func() error

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "unzipr",
		Usage: "Extract a .zip archive into a directory",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "error",
				Usage: "Log level (debug, info, warn, error, fatal)",
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					_, err := zapcore.ParseLevel(s)
					if err != nil {
						return fmt.Errorf("%w: invalid log level %s: %w", errUsage, s, err)
					}
					return nil
				},
			},
		}, extractFlags...),
		Action: runExtract,
		Commands: []*cli.Command{
			listCommand,
			versionCommand,
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			logger, _, err := createLogger(command.Bool("debug"), command.String("log-level"))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", errUsage, err)
			}

			loggerDeferFunc = func() error {
				return logger.Sync()
			}

			return withLogger(ctx, logger), nil
		},
		OnUsageError: func(ctx context.Context, command *cli.Command, err error, isSubcommand bool) error {
			return fmt.Errorf("%w: %w", errUsage, err)
		},
		ExitErrHandler: func(ctx context.Context, command *cli.Command, err error) {
			if err == nil {
				return
			}

			if logger := tryLogger(ctx); logger != nil {
				logger.Debug("command failed", zap.Error(err))
			}

			fmt.Fprintln(os.Stderr, err)
			cli.OsExiter(exitCode(err))
		},
	}
}

// exitCode maps a failure to the documented exit code for its category.
// Anything uncategorized (permission denial, disk full) exits 1.
func exitCode(err error) int {
	switch {
	case errors.Is(err, unzip.ErrArchiveMissing):
		return exitMissingFile
	case errors.Is(err, unzip.ErrNotZipFile), errors.Is(err, errUsage):
		return exitInvalidInput
	case errors.Is(err, unzip.ErrBadArchive):
		return exitBadArchive
	}
	return exitGeneric
}

func main() {
	app := newApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	defer func() {
		if loggerDeferFunc != nil {
			loggerDeferFunc()
		}
	}()

	app.Run(ctx, os.Args)
}
