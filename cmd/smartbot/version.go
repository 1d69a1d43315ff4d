package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("smartbot %s (commit %s, built %s)\n", Version, Commit, BuildDate)
			return nil
		},
	}
}
