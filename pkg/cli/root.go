package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lacoski/backurne/pkg/config"
	"github.com/lacoski/backurne/pkg/engine"
	"github.com/lacoski/backurne/pkg/logging"
	"github.com/lacoski/backurne/pkg/restore"
	"github.com/lacoski/backurne/pkg/stats"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to the backurne YAML configuration document",
	Sources: cli.EnvVars("BACKURNE_CONFIG"),
	Value:   "/etc/backurne/config.yaml",
}

var logLevelFlag = &cli.StringFlag{
	Name:    "log-level",
	Usage:   "debug, info, warn, or error",
	Sources: cli.EnvVars("BACKURNE_LOG_LEVEL"),
	Value:   "info",
}

// Root builds the top-level backurne command tree.
func Root(version string) *cli.Command {
	return &cli.Command{
		Name:                  "backurne",
		Usage:                 "incremental snapshot-based backup for Ceph RBD images",
		Version:               version,
		EnableShellCompletion: true,
		Flags:                 []cli.Flag{configFlag, logLevelFlag},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel("backurne", version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			backupCmd(),
			precheckCmd(),
			checkSnapCmd(),
			checkCmd(),
			statsCmd(stats.Stub{}),
			lsCmd(restore.Stub{}),
			listMappedCmd(restore.Stub{}),
			mapCmd(restore.Stub{}),
			unmapCmd(restore.Stub{}),
		},
	}
}

// loadEngine reads cmd's --config flag and builds an Engine, the common
// preamble of every subcommand in this file that isn't restore/stats.
func loadEngine(cmd *cli.Command) (*engine.Engine, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("cli: %w", err)
	}
	return engine.New(cfg)
}

// ExitError carries a subcommand's intended process exit code without a
// human-readable message, for verification subcommands that communicate
// failure purely through status (spec.md §6 `check`/`precheck`/
// `check-snap`: exit 2 when any finding is reported, 0 otherwise).
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

func exitCode(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}

// stdout is overridden by tests; production code always writes to
// os.Stdout.
var stdout io.Writer = os.Stdout
