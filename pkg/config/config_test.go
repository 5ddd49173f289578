package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
live_clusters:
  - name: pve1
    type: proxmox
    pool: rbd
    address: https://pve1.example.net:8006
  - name: plainpool
    type: plain
    pool: images
backup:
  pool: backup
  cluster_name: backup-ceph
  user: backurne
profiles:
  hourly:
    count: 24
    frequency: hourly
  daily:
    count: 7
    frequency: daily
    max_on_live: 2
lockdir: /var/lib/backurne/lock
check_db: /var/lib/backurne/check.sqlite
live_worker: 8
backup_worker: 4
extra_retention_time: 21600
log_level: debug
uuid_fallback: true
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidDocument(t *testing.T) {
	cfg, err := Load(writeTemp(t, validDoc))
	require.NoError(t, err)

	assert.Len(t, cfg.LiveClusters, 2)
	assert.Equal(t, "pve1", cfg.LiveClusters[0].Name)
	assert.Equal(t, 24, cfg.Profiles["hourly"].Count)
	assert.Equal(t, 2, cfg.Profiles["daily"].MaxOnLive)
	assert.Equal(t, 8, cfg.LiveWorker)
	assert.True(t, cfg.UUIDFallback)
	assert.Equal(t, 6*time.Hour, cfg.ExtraRetentionTime())
}

func TestLoadDefaultsWorkerCounts(t *testing.T) {
	doc := `
live_clusters:
  - name: pve1
    type: proxmox
    pool: rbd
backup:
  pool: backup
lockdir: /var/lib/backurne/lock
check_db: /var/lib/backurne/check.sqlite
`
	cfg, err := Load(writeTemp(t, doc))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.LiveWorker)
	assert.Equal(t, 4, cfg.BackupWorker)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no clusters", `lockdir: /x
check_db: /y`},
		{"duplicate cluster name", `live_clusters:
  - name: a
    type: plain
    pool: p1
  - name: a
    type: plain
    pool: p2
backup:
  pool: backup
lockdir: /x
check_db: /y`},
		{"unknown cluster type", `live_clusters:
  - name: a
    type: bogus
    pool: p1
backup:
  pool: backup
lockdir: /x
check_db: /y`},
		{"missing pool", `live_clusters:
  - name: a
    type: plain
backup:
  pool: backup
lockdir: /x
check_db: /y`},
		{"missing backup pool", `live_clusters:
  - name: a
    type: plain
    pool: p1
lockdir: /x
check_db: /y`},
		{"missing lockdir", `live_clusters:
  - name: a
    type: plain
    pool: p1
backup:
  pool: backup
check_db: /y`},
		{"negative grace", `live_clusters:
  - name: a
    type: plain
    pool: p1
backup:
  pool: backup
lockdir: /x
check_db: /y
extra_retention_time: -1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.doc))
			assert.Error(t, err)
		})
	}
}
