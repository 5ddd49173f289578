package driver

import (
	"context"
	"io"
)

// Checksum is a checksum tagged with the algorithm that produced it. The
// deep verifier (pkg/verify) compares two Checksums and reports a Divergent
// finding whenever either the digests differ or the algorithms don't match —
// an algorithm mismatch cannot be meaningfully compared and must never be
// silently treated as a match (spec.md §4.8 Open Question).
type Checksum struct {
	Algorithm string
	Digest    string
}

// Equal reports whether c and other were computed with the same algorithm
// and agree on the digest.
func (c Checksum) Equal(other Checksum) bool {
	return c.Algorithm == other.Algorithm && c.Digest == other.Digest
}

// Driver is the storage driver capability interface (spec.md §4.4). Two
// instances exist per run: one bound to a live cluster's pool, one bound to
// the backup cluster's pool. Bit-exact wire behavior is delegated; this
// interface only fixes the observable contract every caller in this module
// relies on.
type Driver interface {
	// ListImages enumerates image ids in pool.
	ListImages(ctx context.Context, pool string) ([]string, error)

	// Snapshots lists the tool-managed and foreign snapshot names that
	// currently exist on image, in no particular order.
	Snapshots(ctx context.Context, image string) ([]string, error)

	// Checksum computes a content checksum of image as of snap.
	Checksum(ctx context.Context, image, snap string) (Checksum, error)

	// MakeSnap creates a new snapshot named name on image.
	MakeSnap(ctx context.Context, image, name string) error

	// RmSnap deletes the snapshot named name from image.
	RmSnap(ctx context.Context, image, name string) error

	// RmImage deletes image and every snapshot it carries.
	RmImage(ctx context.Context, image string) error

	// ExportDiff streams an incremental (or, when from is empty, full)
	// export of image between from and to. The caller must close the
	// returned ReadCloser.
	ExportDiff(ctx context.Context, image, from, to string) (io.ReadCloser, error)

	// ImportDiff applies a stream previously produced by ExportDiff to
	// destImage. It consumes stream to EOF but does not close it.
	ImportDiff(ctx context.Context, destImage string, stream io.Reader) error
}
