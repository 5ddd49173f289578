package driver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/lacoski/backurne/pkg/errors"
)

// RBDDriver shells out to the rbd and ceph CLIs, grounded on the
// --id/--cluster/--pool flag idiom common to Ceph CLI wrappers. One
// RBDDriver is bound to exactly one pool on one cluster.
type RBDDriver struct {
	Pool        string
	ClusterName string
	UserName    string
}

// NewRBDDriver builds a driver bound to pool on the named cluster,
// authenticating as user (Ceph's client.<user>).
func NewRBDDriver(pool, clusterName, userName string) *RBDDriver {
	if clusterName == "" {
		clusterName = "ceph"
	}
	if userName == "" {
		userName = "admin"
	}
	return &RBDDriver{Pool: pool, ClusterName: clusterName, UserName: userName}
}

func (d *RBDDriver) rbdArgs(args ...string) []string {
	base := []string{"--id", d.UserName, "--cluster", d.ClusterName}
	return append(base, args...)
}

func (d *RBDDriver) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeTransientIO, fmt.Sprintf("%s %s", name, strings.Join(args, " ")), err,
			map[string]any{"stderr": stderr.String()})
	}
	return stdout.Bytes(), nil
}

func (d *RBDDriver) ListImages(ctx context.Context, pool string) ([]string, error) {
	out, err := d.run(ctx, "rbd", d.rbdArgs("--pool", pool, "ls")...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func (d *RBDDriver) Snapshots(ctx context.Context, image string) ([]string, error) {
	out, err := d.run(ctx, "rbd", d.rbdArgs("--pool", d.Pool, "snap", "ls", image, "--format", "plain")...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// Checksum exports the full image contents as of snap and hashes them
// locally — a stand-in for a server-side checksum RPC, since rbd itself has
// no built-in checksum subcommand. The algorithm tag lets callers detect a
// mismatch against a driver using a different scheme instead of silently
// comparing incompatible digests.
func (d *RBDDriver) Checksum(ctx context.Context, image, snap string) (Checksum, error) {
	stream, err := d.ExportDiff(ctx, image, "", snap)
	if err != nil {
		return Checksum{}, err
	}
	defer stream.Close()

	h := sha256.New()
	if _, err := io.Copy(h, stream); err != nil {
		return Checksum{}, errors.Wrap(errors.ErrCodeTransientIO, "driver: checksum read", err)
	}
	return Checksum{Algorithm: "sha256", Digest: hex.EncodeToString(h.Sum(nil))}, nil
}

func (d *RBDDriver) MakeSnap(ctx context.Context, image, name string) error {
	_, err := d.run(ctx, "rbd", d.rbdArgs("--pool", d.Pool, "snap", "create", fmt.Sprintf("%s@%s", image, name))...)
	return err
}

func (d *RBDDriver) RmSnap(ctx context.Context, image, name string) error {
	_, err := d.run(ctx, "rbd", d.rbdArgs("--pool", d.Pool, "snap", "rm", fmt.Sprintf("%s@%s", image, name))...)
	return err
}

func (d *RBDDriver) RmImage(ctx context.Context, image string) error {
	_, err := d.run(ctx, "rbd", d.rbdArgs("--pool", d.Pool, "rm", image)...)
	return err
}

// ExportDiff shells out to `rbd export-diff`, piping its stdout back to the
// caller. When from is empty, a full export (no --from-snap) is produced.
func (d *RBDDriver) ExportDiff(ctx context.Context, image, from, to string) (io.ReadCloser, error) {
	args := d.rbdArgs("--pool", d.Pool, "export-diff")
	if from != "" {
		args = append(args, "--from-snap", from)
	}
	args = append(args, fmt.Sprintf("%s@%s", image, to), "-")

	cmd := exec.CommandContext(ctx, "rbd", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransientIO, "driver: export-diff pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransientIO, "driver: export-diff start", err)
	}
	return &cmdReadCloser{ReadCloser: stdout, cmd: cmd}, nil
}

// ImportDiff shells out to `rbd import-diff`, feeding stream to its stdin.
func (d *RBDDriver) ImportDiff(ctx context.Context, destImage string, stream io.Reader) error {
	args := d.rbdArgs("--pool", d.Pool, "import-diff", "-", destImage)
	cmd := exec.CommandContext(ctx, "rbd", args...)
	cmd.Stdin = stream
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.WrapWithContext(errors.ErrCodeTransientIO, "driver: import-diff", err, map[string]any{"stderr": stderr.String()})
	}
	return nil
}

// cmdReadCloser waits on the backing command when the caller closes the
// stream, surfacing a non-zero exit as an error from Close.
type cmdReadCloser struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (c *cmdReadCloser) Close() error {
	cerr := c.ReadCloser.Close()
	werr := c.cmd.Wait()
	if werr != nil {
		return errors.Wrap(errors.ErrCodeTransientIO, "driver: export-diff wait", werr)
	}
	return cerr
}

func splitLines(out []byte) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
