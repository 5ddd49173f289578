package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lacoski/backurne/pkg/snapshot"
)

// ClusterConfig describes one live cluster entry under live_clusters.
type ClusterConfig struct {
	Name string `yaml:"name"`
	// Type selects the cluster.Adapter implementation: "proxmox" or "plain".
	Type string `yaml:"type"`
	// Pool is the RBD pool this cluster's images live in.
	Pool string `yaml:"pool"`
	// Address is the API endpoint for proxmox-type clusters; empty for plain.
	Address string `yaml:"address,omitempty"`
	// FQDN identifies this cluster to the profiles API (spec.md §6's
	// {cluster:{type,name,fqdn}} descriptor); it is not used to reach the
	// cluster itself.
	FQDN string `yaml:"fqdn,omitempty"`
	// TokenFile, when set, is read for the proxmox API token instead of an
	// inline secret living in the document.
	TokenFile string `yaml:"token_file,omitempty"`
	// ClusterName is the Ceph cluster identity this pool lives on (the
	// `--cluster` flag to rbd/ceph); defaults to "ceph" when empty.
	ClusterName string `yaml:"cluster_name,omitempty"`
	// UserName is the Ceph client identity to authenticate as; defaults to
	// "admin" when empty.
	UserName string `yaml:"user,omitempty"`
}

// BackupConfig describes the single destination cluster every live
// cluster's images are mirrored to.
type BackupConfig struct {
	Pool        string `yaml:"pool"`
	ClusterName string `yaml:"cluster_name,omitempty"`
	UserName    string `yaml:"user,omitempty"`
}

// Config is the parsed and validated backurne configuration document
// (spec.md §6 "Environment", plus the backup cluster connection details
// every run needs to build its destination driver.Driver).
type Config struct {
	LiveClusters []ClusterConfig       `yaml:"live_clusters"`
	Backup       BackupConfig          `yaml:"backup"`
	Profiles     snapshot.Table        `yaml:"profiles"`
	ProfilesAPI  string                `yaml:"profiles_api,omitempty"`
	LiveWorker   int                   `yaml:"live_worker"`
	BackupWorker int                   `yaml:"backup_worker"`
	LockDir      string                `yaml:"lockdir"`
	CheckDB      string                `yaml:"check_db"`
	// ExtraRetentionTimeSeconds is the grace window, in seconds, applied to
	// the last remaining backup-side snapshot of an image (spec.md §4.2).
	ExtraRetentionTimeSeconds int64 `yaml:"extra_retention_time"`
	LogLevel                  string `yaml:"log_level,omitempty"`
	// UUIDFallback permits a Unit without SMBIOS identity to be backed up
	// under a UUID derived from its cluster name and VMID instead of being
	// skipped (spec.md §4.3).
	UUIDFallback bool `yaml:"uuid_fallback,omitempty"`
	// SnapshotTag overrides snapshot.Tag, the literal prefix that marks a
	// snapshot as tool-managed. Empty keeps the package default.
	SnapshotTag string `yaml:"snapshot_tag,omitempty"`
}

// ExtraRetentionTime is ExtraRetentionTimeSeconds as a time.Duration.
func (c *Config) ExtraRetentionTime() time.Duration {
	return time.Duration(c.ExtraRetentionTimeSeconds) * time.Second
}

// Load reads and validates the YAML document at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := &Config{
		LiveWorker:   4,
		BackupWorker: 4,
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields Load cannot default its way around.
func (c *Config) Validate() error {
	if len(c.LiveClusters) == 0 {
		return fmt.Errorf("live_clusters must list at least one cluster")
	}
	seen := make(map[string]struct{}, len(c.LiveClusters))
	for _, cl := range c.LiveClusters {
		if cl.Name == "" {
			return fmt.Errorf("live_clusters entry missing name")
		}
		if _, dup := seen[cl.Name]; dup {
			return fmt.Errorf("live_clusters: duplicate name %q", cl.Name)
		}
		seen[cl.Name] = struct{}{}
		switch cl.Type {
		case "proxmox", "plain":
		default:
			return fmt.Errorf("live_clusters[%s]: unknown type %q", cl.Name, cl.Type)
		}
		if cl.Pool == "" {
			return fmt.Errorf("live_clusters[%s]: pool is required", cl.Name)
		}
	}
	if c.Backup.Pool == "" {
		return fmt.Errorf("backup.pool is required")
	}
	if c.LockDir == "" {
		return fmt.Errorf("lockdir is required")
	}
	if c.CheckDB == "" {
		return fmt.Errorf("check_db is required")
	}
	if c.LiveWorker <= 0 {
		return fmt.Errorf("live_worker must be positive")
	}
	if c.BackupWorker <= 0 {
		return fmt.Errorf("backup_worker must be positive")
	}
	if c.ExtraRetentionTimeSeconds < 0 {
		return fmt.Errorf("extra_retention_time must not be negative")
	}
	return nil
}
