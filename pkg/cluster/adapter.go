package cluster

import "context"

// Adapter is the cluster capability interface (spec.md §4.3).
type Adapter interface {
	// ListUnits enumerates the backup units on this cluster.
	ListUnits(ctx context.Context) ([]Unit, error)

	// ProfilesFor resolves the effective retention profiles for one disk of
	// a unit. ok is false when the disk should be skipped entirely (the
	// profiles API reported backup:false).
	ProfilesFor(ctx context.Context, unit Unit, disk Disk) (profiles []ProfileEntry, ok bool, err error)

	// Freeze brackets the start of a consistency window covering every disk
	// of unit. Plain clusters implement this as a no-op.
	Freeze(ctx context.Context, unit Unit) error

	// Thaw ends the consistency window opened by Freeze. Thaw is always
	// called if Freeze succeeded, even when snapshot creation inside the
	// window failed.
	Thaw(ctx context.Context, unit Unit) error
}
