package engine

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacoski/backurne/pkg/cluster"
	"github.com/lacoski/backurne/pkg/config"
	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/pipeline"
	"github.com/lacoski/backurne/pkg/snapshot"
	"github.com/lacoski/backurne/pkg/status"
	"github.com/lacoski/backurne/pkg/store"
)

func newTestEngine(t *testing.T) (*Engine, *driver.FakeDriver, *driver.FakeDriver) {
	t.Helper()
	live := driver.NewFakeDriver()
	backup := driver.NewFakeDriver()

	adapter := &cluster.PlainAdapter{
		Pool:        "pool",
		ClusterName: "c1",
		BackupPool:  "backup",
		Live:        live,
		Profiles:    snapshot.Table{"daily": {Count: 7, Frequency: snapshot.Daily}},
	}

	db, err := store.Open(filepath.Join(t.TempDir(), "check.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := prometheus.NewRegistry()
	e := &Engine{
		cfg: &config.Config{
			LiveWorker: 2,
			LockDir:    t.TempDir(),
			Profiles:   snapshot.Table{"daily": {Count: 7, Frequency: snapshot.Daily}},
			Backup:     config.BackupConfig{Pool: "backup"},
		},
		clusters: []pipeline.ClusterBinding{{Name: "c1", Pool: "pool", Adapter: adapter, Live: live}},
		backup:   backup,
		store:    db,
		registry: reg,
		metrics:  status.NewMetrics(reg),
	}
	return e, live, backup
}

func TestBackupRunTransfersAndExpires(t *testing.T) {
	ctx := context.Background()
	e, live, backup := newTestEngine(t)
	live.Seed("pool/x")

	require.NoError(t, e.BackupRun(ctx))

	liveSnaps, err := live.Snapshots(ctx, "pool/x")
	require.NoError(t, err)
	require.Len(t, liveSnaps, 1)

	backupSnaps, err := backup.Snapshots(ctx, "backup/c1_x")
	require.NoError(t, err)
	assert.Equal(t, liveSnaps, backupSnaps)
}

func TestPrecheckRunRecordsButDoesNotFlagOnFirstPass(t *testing.T) {
	ctx := context.Background()
	e, live, _ := newTestEngine(t)
	live.Seed("pool/x")
	snap := snapshot.New("daily", 7, time.Now()).Format()
	require.NoError(t, live.MakeSnap(ctx, "pool/x", snap))

	var out bytes.Buffer
	code, err := e.PrecheckRun(ctx, NewReporter(&out))
	require.NoError(t, err)
	assert.Equal(t, 0, code, "a freshly-inserted record must not trip exit 2 before StaleWindow elapses")
	assert.Empty(t, out.String())

	recorded, err := e.store.Stale(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recorded, 1, "precheck must still reconcile its finding into the store")
	assert.Contains(t, recorded[0].Message, "missing")
}

func TestPrecheckRunRecordsNothingWhenAnchorIsFresh(t *testing.T) {
	ctx := context.Background()
	e, live, backup := newTestEngine(t)
	live.Seed("pool/x")
	snap := snapshot.New("daily", 7, time.Now()).Format()
	require.NoError(t, live.MakeSnap(ctx, "pool/x", snap))
	diff, err := live.ExportDiff(ctx, "pool/x", "", snap)
	require.NoError(t, err)
	require.NoError(t, backup.ImportDiff(ctx, "backup/c1_x", diff))

	var out bytes.Buffer
	code, err := e.PrecheckRun(ctx, NewReporter(&out))
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	recorded, err := e.store.Stale(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, recorded)
}

func TestCheckSnapRunRecordsButDoesNotFlagOnFirstPass(t *testing.T) {
	ctx := context.Background()
	e, live, backup := newTestEngine(t)
	live.Seed("pool/x")
	snap := snapshot.New("daily", 7, time.Now()).Format()
	require.NoError(t, live.MakeSnap(ctx, "pool/x", snap))
	backup.Seed("backup/c1_x")
	require.NoError(t, backup.MakeSnap(ctx, "backup/c1_x", snap))

	var out bytes.Buffer
	code, err := e.CheckSnapRun(ctx, NewReporter(&out))
	require.NoError(t, err)
	assert.Equal(t, 0, code, "a freshly-inserted record must not trip exit 2 before StaleWindow elapses")
	assert.Empty(t, out.String())

	recorded, err := e.store.Stale(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recorded, 1, "check-snap must still reconcile its finding into the store")
	assert.Contains(t, recorded[0].Message, "Divergent")
}

func TestCheckRunReturnsZeroWithNoStoredFailures(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	var out bytes.Buffer
	code, err := e.CheckRun(ctx, NewReporter(&out))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, out.String())
}
