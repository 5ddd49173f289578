// Package restore defines the extension point for the restore subsystem
// (ls, list-mapped, map, unmap) that spec.md §1 places out of scope. A
// concrete implementation maps/unmaps an RBD snapshot as a block device and
// enumerates what is currently mapped; pkg/cli wires a Stub by default.
package restore
