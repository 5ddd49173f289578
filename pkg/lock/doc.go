// Package lock implements the per-image mutual-exclusion protocol
// (spec.md §4.1): a named, non-blocking advisory lock keyed by a sanitized
// image id, backed by one zero-length file per image under a configured
// lock directory.
//
// Acquisition never blocks and never retries: a held lock fails immediately
// with errors.ErrCodeContended, which every caller in this codebase treats
// as "another worker already owns this image" rather than as a fault.
// Correctness depends on every worker process sharing the same lock
// directory, which is true for all workers started from one backurne
// binary against one configuration.
package lock
