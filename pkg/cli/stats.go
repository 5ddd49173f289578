package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/lacoski/backurne/pkg/stats"
)

func statsCmd(reporter stats.Reporter) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "print pipeline statistics",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return reporter.PrintStats(ctx, stdout)
		},
	}
}
