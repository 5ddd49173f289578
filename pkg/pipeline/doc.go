// Package pipeline implements the Producer and Consumer components (C5/C6):
// discovering backup units, taking coordinated snapshots under the image
// lock, and streaming incremental exports to the backup cluster.
//
// The original Python implementation used a multiprocessing.Pool of
// Consumers fed through a Manager().Queue(), terminated by one sentinel
// value per worker. This package instead runs the Producer and every
// Consumer as goroutines coordinated by golang.org/x/sync/errgroup over a
// single buffered chan Batch: the Producer closes the channel when
// every live cluster has been processed, and ranging Consumers exit
// naturally on channel close, with no sentinel values needed.
package pipeline
