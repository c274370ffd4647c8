package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/unzipr/unzipr/internal/unzip"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "List the entries of a .zip archive without extracting it",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "zippedfile",
			Aliases: []string{"l"},
			Usage:   "Path to the .zip archive to list",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		req := unzip.Request{Archive: command.String("zippedfile")}

		entries, err := unzip.List(ctx, req)
		if err != nil {
			return err
		}

		logger.Debug("listed archive", zap.String("archive", req.Archive), zap.Int("entries", len(entries)))

		out, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to encode listing: %w", err)
		}

		fmt.Print(string(out))
		return nil
	},
}
