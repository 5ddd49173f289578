// Package cli implements the command-line interface for the backurne
// incremental RBD backup tool.
//
// # Overview
//
// backurne manages snapshot-based backups of Ceph RBD images: it
// schedules due snapshots on live clusters, mirrors them incrementally to
// a backup cluster, expires snapshots on both sides per retention
// profile, verifies that backups are current or bit-identical to their
// live source, and exposes a small restore surface over the result.
//
// # Commands
//
//	backurne backup                 run one full snapshot+transfer+expire cycle
//	backurne precheck                flag images whose backup anchor is stale or missing
//	backurne check-snap               flag images whose shared snapshots have diverged
//	backurne check                   report persistently-failing images, exit 2 if any
//	backurne stats                   print pipeline statistics
//	backurne ls                      list backup images and their snapshots
//	backurne list-mapped             list currently mapped restore mounts
//	backurne map IMAGE SNAPSHOT      map a backup snapshot read-only
//	backurne unmap IMAGE SNAPSHOT    unmap a previously mapped snapshot
//
// # Global Flags
//
//	--config, -c   Path to the YAML configuration document (env BACKURNE_CONFIG)
//	--log-level    debug|info|warn|error (env BACKURNE_LOG_LEVEL, default info)
//
// Every subcommand except ls/list-mapped/map/unmap/stats loads
// pkg/config, builds a pkg/engine.Engine from it, and tears it down on
// exit.
package cli
