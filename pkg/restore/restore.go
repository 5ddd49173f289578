package restore

import (
	"context"
	"errors"
	"time"
)

// ErrNotImplemented is returned by Stub for every operation; pkg/cli
// surfaces it directly rather than treating it as an infrastructural
// failure.
var ErrNotImplemented = errors.New("restore: not implemented")

// Image is one restorable image, as reported by ls with no argument.
type Image struct {
	Ident string
	Disk  string
	UUID  string
}

// Snapshot is one restorable snapshot of a single image, as reported by
// ls <rbd>.
type Snapshot struct {
	Creation time.Time
	UUID     string
}

// Mapped is one currently-mounted restore session, as reported by
// list-mapped.
type Mapped struct {
	ParentImage string
	ParentSnap  string
	MountPoint  string
}

// Lister enumerates restorable images, their snapshots, and currently
// mapped restore sessions (spec.md §6, `ls`/`list-mapped`).
type Lister interface {
	ListImages(ctx context.Context) ([]Image, error)
	ListSnapshots(ctx context.Context, rbd string) ([]Snapshot, error)
	ListMapped(ctx context.Context) ([]Mapped, error)
}

// Mounter maps a snapshot as a block device, or tears the mapping down
// (spec.md §6, `map`/`unmap`).
type Mounter interface {
	Mount(ctx context.Context, rbd, snapshot string) error
	Unmount(ctx context.Context, rbd, snapshot string) error
}

// Stub satisfies both Lister and Mounter by reporting ErrNotImplemented.
// The restore subsystem (clone, map, filesystem mount) is out of scope
// per spec.md §1; this type documents the extension point a deployment
// wires a real implementation into.
type Stub struct{}

func (Stub) ListImages(context.Context) ([]Image, error)              { return nil, ErrNotImplemented }
func (Stub) ListSnapshots(context.Context, string) ([]Snapshot, error) { return nil, ErrNotImplemented }
func (Stub) ListMapped(context.Context) ([]Mapped, error)             { return nil, ErrNotImplemented }
func (Stub) Mount(context.Context, string, string) error              { return ErrNotImplemented }
func (Stub) Unmount(context.Context, string, string) error            { return ErrNotImplemented }

var (
	_ Lister  = Stub{}
	_ Mounter = Stub{}
)
