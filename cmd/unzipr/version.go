package main

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/urfave/cli/v3"
)

// buildInfo is resolved once from the binary's embedded build metadata.
type buildInfo struct {
	Version   string
	GoVersion string
	Commit    string
	BuildTime string
	Modified  bool
}

var readBuildInfo = sync.OnceValue(func() buildInfo {
	bi := buildInfo{
		Version:   "unknown",
		GoVersion: "unknown",
		Commit:    "unknown",
		BuildTime: "unknown",
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}

	bi.Version = info.Main.Version
	bi.GoVersion = info.GoVersion

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			bi.Commit = setting.Value
		case "vcs.time":
			bi.BuildTime = setting.Value
		case "vcs.modified":
			bi.Modified = setting.Value == "true"
		}
	}

	return bi
})

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print version information",
	Action: func(ctx context.Context, command *cli.Command) error {
		info := readBuildInfo()

		fmt.Printf("unzipr %s (%s)\n", info.Version, info.GoVersion)
		if info.Commit != "unknown" {
			commit := info.Commit
			if info.Modified {
				commit += " (dirty)"
			}
			fmt.Printf("commit: %s\n", commit)
		}
		if info.BuildTime != "unknown" {
			fmt.Printf("built: %s\n", info.BuildTime)
		}
		return nil
	},
}
