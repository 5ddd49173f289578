// Package config loads and validates the backurne configuration document.
//
// The document is a single YAML file exposing live clusters, retention
// profiles, the optional profiles HTTP API, worker pool sizes, the lock
// directory, the results store path, the grace period for the last backup
// snapshot, the
// default log level, and the SMBIOS-fallback toggle — the fields named in
// spec.md §6 "Environment".
//
// Example:
//
//	cfg, err := config.Load("/etc/backurne/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.LiveWorker)
package config
