package expire

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/snapshot"
)

func mustSnap(t *testing.T, d *driver.FakeDriver, image, profile string, count int, at time.Time) string {
	t.Helper()
	n := snapshot.New(profile, count, at)
	require.NoError(t, d.MakeSnap(context.Background(), image, n.Format()))
	return n.Format()
}

func TestLiveExpiryKeepsMaxOnLiveAndAnchor(t *testing.T) {
	ctx := context.Background()
	live := driver.NewFakeDriver()
	backup := driver.NewFakeDriver()
	now := time.Now()

	old := mustSnap(t, live, "pool/x", "hourly", 24, now.Add(-3*time.Hour))
	mid := mustSnap(t, live, "pool/x", "hourly", 24, now.Add(-2*time.Hour))
	anchor := mustSnap(t, live, "pool/x", "hourly", 24, now.Add(-1*time.Hour))
	require.NoError(t, backup.MakeSnap(ctx, "backup/x", anchor))

	profiles := snapshot.Table{"hourly": {Count: 24, Frequency: snapshot.Hourly, MaxOnLive: 1}}
	require.NoError(t, Live(ctx, live, backup, t.TempDir(), profiles, 2, []LiveTarget{{Image: "pool/x", Destination: "backup/x"}}, nil))

	remaining, err := live.Snapshots(ctx, "pool/x")
	require.NoError(t, err)
	assert.Contains(t, remaining, anchor, "the anchor must never be deleted by live expiry")
	assert.Contains(t, remaining, mid, "max_on_live=1 retains the most recent snapshot below the anchor")
	assert.NotContains(t, remaining, old)
}

func TestLiveExpiryDeletesOrphanedProfile(t *testing.T) {
	ctx := context.Background()
	live := driver.NewFakeDriver()
	backup := driver.NewFakeDriver()
	now := time.Now()

	anchor := mustSnap(t, live, "pool/x", "hourly", 24, now.Add(-1*time.Hour))
	require.NoError(t, backup.MakeSnap(ctx, "backup/x", anchor))
	gone := mustSnap(t, live, "pool/x", "weekly", 4, now.Add(-48*time.Hour))

	profiles := snapshot.Table{"hourly": {Count: 24, Frequency: snapshot.Hourly}}
	require.NoError(t, Live(ctx, live, backup, t.TempDir(), profiles, 2, []LiveTarget{{Image: "pool/x", Destination: "backup/x"}}, nil))

	remaining, err := live.Snapshots(ctx, "pool/x")
	require.NoError(t, err)
	assert.NotContains(t, remaining, gone, "snapshots under a profile no longer in config are deletable on the live side")
}

func TestBackupExpiryDeletesExpiredKeepsFresh(t *testing.T) {
	ctx := context.Background()
	backup := driver.NewFakeDriver()
	now := time.Now()

	expired := mustSnap(t, backup, "backup/x", "daily", 7, now.Add(-8*24*time.Hour))
	fresh := mustSnap(t, backup, "backup/x", "daily", 7, now.Add(-1*time.Hour))

	profiles := snapshot.Table{"daily": {Count: 7, Frequency: snapshot.Daily}}
	require.NoError(t, Backup(ctx, backup, t.TempDir(), profiles, 0, 2, []string{"backup/x"}, nil))

	remaining, err := backup.Snapshots(ctx, "backup/x")
	require.NoError(t, err)
	assert.NotContains(t, remaining, expired)
	assert.Contains(t, remaining, fresh)
}

func TestBackupExpiryGraceProtectsLastSnapshot(t *testing.T) {
	ctx := context.Background()
	backup := driver.NewFakeDriver()
	now := time.Now()
	last := mustSnap(t, backup, "backup/x", "daily", 7, now.Add(-8*24*time.Hour))

	profiles := snapshot.Table{"daily": {Count: 7, Frequency: snapshot.Daily}}
	require.NoError(t, Backup(ctx, backup, t.TempDir(), profiles, 48*time.Hour, 2, []string{"backup/x"}, nil))

	remaining, err := backup.Snapshots(ctx, "backup/x")
	require.NoError(t, err)
	assert.Contains(t, remaining, last, "grace period must protect the sole remaining snapshot")
}

func TestBackupExpiryDeletesOrphanedImage(t *testing.T) {
	ctx := context.Background()
	backup := driver.NewFakeDriver()
	backup.Seed("backup/x")

	require.NoError(t, Backup(ctx, backup, t.TempDir(), snapshot.Table{}, 0, 2, []string{"backup/x"}, nil))

	names, err := backup.ListImages(ctx, "backup")
	require.NoError(t, err)
	assert.Empty(t, names)
}
