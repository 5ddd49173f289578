// Package driver implements the storage driver capability interface
// (spec.md §4.4): listing RBD images, enumerating and taking snapshots,
// checksumming, and streaming incremental diffs between two pools.
//
// Bit-exact wire behavior of the underlying Ceph cluster is out of scope
// per spec.md §1 — RBDDriver shells out to the `rbd` and `ceph` CLIs via
// os/exec rather than linking librbd, and FakeDriver is an in-memory
// double used by every package that only needs the Driver interface's
// observable behavior (producer, consumer, expirer, verifier tests).
package driver
