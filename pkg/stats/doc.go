// Package stats defines the extension point for the stats subsystem
// (spec.md §6 `stats` command), out of scope per spec.md §1. pkg/cli wires
// a Stub by default.
package stats
