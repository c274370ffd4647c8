package main

import (
	"context"
	"fmt"

	"github.com/unzipr/unzipr/internal/unzip"
	"github.com/urfave/cli/v3"
)

var extractFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "zippedfile",
		Aliases: []string{"l"},
		Usage:   "Path to the .zip archive to extract",
	},
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Destination directory (defaults to a directory named after the archive)",
	},
}

func runExtract(ctx context.Context, command *cli.Command) error {
	logger := getLogger(ctx)

	req := unzip.Request{
		Archive: command.String("zippedfile"),
		Output:  command.String("output"),
	}

	if err := unzip.Extract(ctx, logger.Named("extract"), req); err != nil {
		return err
	}

	fmt.Println("Extracted successfully.")
	return nil
}
