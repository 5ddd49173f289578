// Package engine wires the configuration, cluster adapters, drivers,
// pipeline, expirer, verifier, and results store together into the four
// operations pkg/cli's subcommands invoke. It is the Go analogue of
// backurne.py's main().
package engine
