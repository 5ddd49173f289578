package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/lacoski/backurne/pkg/restore"
)

func lsCmd(lister restore.Lister) *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "list backup images and their snapshots",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			images, err := lister.ListImages(ctx)
			if err != nil {
				return err
			}
			for _, img := range images {
				fmt.Fprintf(stdout, "%s\t%s\t%s\n", img.Ident, img.Disk, img.UUID)
			}
			return nil
		},
	}
}

func listMappedCmd(lister restore.Lister) *cli.Command {
	return &cli.Command{
		Name:  "list-mapped",
		Usage: "list currently mapped restore mounts",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mapped, err := lister.ListMapped(ctx)
			if err != nil {
				return err
			}
			for _, m := range mapped {
				fmt.Fprintf(stdout, "%s\t%s\t%s\n", m.ParentImage, m.ParentSnap, m.MountPoint)
			}
			return nil
		},
	}
}

func mapCmd(mounter restore.Mounter) *cli.Command {
	return &cli.Command{
		Name:      "map",
		Usage:     "map a backup snapshot read-only",
		ArgsUsage: "RBD SNAPSHOT",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("cli: map requires exactly 2 arguments: RBD SNAPSHOT")
			}
			return mounter.Mount(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
		},
	}
}

func unmapCmd(mounter restore.Mounter) *cli.Command {
	return &cli.Command{
		Name:      "unmap",
		Usage:     "unmap a previously mapped snapshot",
		ArgsUsage: "RBD SNAPSHOT",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("cli: unmap requires exactly 2 arguments: RBD SNAPSHOT")
			}
			return mounter.Unmount(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
		},
	}
}
