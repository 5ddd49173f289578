package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

// backupCmd runs one full cycle: snapshot due images, transfer them to
// the backup cluster, then expire old snapshots on both sides. BackupRun
// only ever returns an error for a fatal, pipeline-wide failure; every
// per-image problem is logged internally and never surfaces here
// (spec.md §7).
func backupCmd() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "snapshot due images, transfer them to the backup cluster, and expire old snapshots",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			return eng.BackupRun(ctx)
		},
	}
}
