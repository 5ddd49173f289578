// Package store implements the Results Store (C10): a single-table
// SQLite database of current verification failures, reconciled after
// every precheck or check-snap run and queried by the check subcommand.
package store
