// Package expire implements the Expirer (C7): a two-phase garbage
// collector that deletes snapshots on the live side (preserving the
// incremental anchor and each profile's max_on_live) and on the backup
// side (preserving retention and the last-remaining-snapshot grace
// period), plus orphaned-image cleanup on both sides.
//
// Both phases run a bounded worker pool sized by config.LiveWorker /
// config.BackupWorker, built from golang.org/x/sync/errgroup and
// semaphore.Weighted — this package has no concurrency primitives of its
// own beyond that worker-pool helper.
package expire
