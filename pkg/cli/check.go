package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/lacoski/backurne/pkg/engine"
)

func precheckCmd() *cli.Command {
	return &cli.Command{
		Name:  "precheck",
		Usage: "flag images whose backup anchor is missing or older than the freshness threshold",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			code, err := eng.PrecheckRun(ctx, engine.NewReporter(stdout))
			if err != nil {
				return err
			}
			return exitCode(code)
		},
	}
}

func checkSnapCmd() *cli.Command {
	return &cli.Command{
		Name:  "check-snap",
		Usage: "checksum-compare every shared snapshot between a live image and its backup",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			code, err := eng.CheckSnapRun(ctx, engine.NewReporter(stdout))
			if err != nil {
				return err
			}
			return exitCode(code)
		},
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "report images whose verification failures have persisted past the staleness window",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			code, err := eng.CheckRun(ctx, engine.NewReporter(stdout))
			if err != nil {
				return err
			}
			return exitCode(code)
		},
	}
}
