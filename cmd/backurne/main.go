// Command backurne runs incremental snapshot-based backups of Ceph RBD
// images.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lacoski/backurne/pkg/cli"
)

var version = "dev"

func main() {
	if err := cli.Root(version).Run(context.Background(), os.Args); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
