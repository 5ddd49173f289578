package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, now time.Time) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "check.db"))
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReconcileInsertsNewFailures(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	s := openTestStore(t, now)

	require.NoError(t, s.Reconcile(ctx, []Record{{Cluster: "c1", Image: "pool/x", Message: "missing"}}))

	stale, err := s.Stale(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, int64(1000), stale[0].FirstSeenEpoch)
	assert.Equal(t, "pool/x", stale[0].Image)
}

func TestReconcilePreservesFirstSeenOnPersistingFailure(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Unix(1000, 0))
	rec := Record{Cluster: "c1", Image: "pool/x", Message: "missing"}

	require.NoError(t, s.Reconcile(ctx, []Record{rec}))
	s.now = func() time.Time { return time.Unix(9000, 0) }
	require.NoError(t, s.Reconcile(ctx, []Record{rec}))

	stale, err := s.Stale(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, int64(1000), stale[0].FirstSeenEpoch, "first_seen_epoch must survive a re-seen failure")
}

func TestReconcileDeletesClearedFailures(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Unix(1000, 0))
	rec := Record{Cluster: "c1", Image: "pool/x", Message: "missing"}

	require.NoError(t, s.Reconcile(ctx, []Record{rec}))
	require.NoError(t, s.Reconcile(ctx, nil))

	stale, err := s.Stale(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestStaleOnlyReturnsRecordsOlderThanWindow(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Unix(1000, 0))
	require.NoError(t, s.Reconcile(ctx, []Record{{Cluster: "c1", Image: "pool/x", Message: "missing"}}))

	s.now = func() time.Time { return time.Unix(1000+3600, 0) }
	stale, err := s.Stale(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, stale, "a one-hour-old record must not trip a two-hour freshness window")

	stale, err = s.Stale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Len(t, stale, 1)
}
