package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacoski/backurne/pkg/cluster"
	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/snapshot"
)

func TestProducerEmitsJobForDueProfile(t *testing.T) {
	ctx := context.Background()
	live := driver.NewFakeDriver()
	live.Seed("pool/x")
	backup := driver.NewFakeDriver()

	adapter := &cluster.PlainAdapter{
		Pool:     "pool",
		Live:     live,
		Profiles: snapshot.Table{"daily": {Count: 7, Frequency: snapshot.Daily}},
	}

	p := &Producer{
		Clusters: []ClusterBinding{{Name: "c1", Pool: "pool", Adapter: adapter, Live: live}},
		Backup:   backup,
		LockDir:  t.TempDir(),
	}

	out := make(chan Batch, 4)
	require.NoError(t, p.Run(ctx, out))

	var batches []Batch
	for batch := range out {
		batches = append(batches, batch)
	}
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Jobs, 1)
	job := batches[0].Jobs[0]
	assert.Equal(t, "pool/x", job.ImageID)
	assert.Nil(t, job.AnchorSnap, "first backup of an image has no anchor")
}

func TestProducerSkipsWhenNotYetDue(t *testing.T) {
	ctx := context.Background()
	live := driver.NewFakeDriver()
	require.NoError(t, live.MakeSnap(ctx, "pool/x", snapshot.New("daily", 7, time.Now()).Format()))
	backup := driver.NewFakeDriver()

	adapter := &cluster.PlainAdapter{
		Pool:     "pool",
		Live:     live,
		Profiles: snapshot.Table{"daily": {Count: 7, Frequency: snapshot.Daily}},
	}
	p := &Producer{
		Clusters: []ClusterBinding{{Name: "c1", Pool: "pool", Adapter: adapter, Live: live}},
		Backup:   backup,
		LockDir:  t.TempDir(),
	}

	out := make(chan Batch, 4)
	require.NoError(t, p.Run(ctx, out))
	var batches []Batch
	for batch := range out {
		batches = append(batches, batch)
	}
	assert.Empty(t, batches, "a freshly created daily snapshot should not be due again immediately")
}

func TestFullRunTransfersToBackup(t *testing.T) {
	ctx := context.Background()
	live := driver.NewFakeDriver()
	live.Seed("pool/x")
	backup := driver.NewFakeDriver()

	adapter := &cluster.PlainAdapter{
		Pool:     "pool",
		Live:     live,
		Profiles: snapshot.Table{"daily": {Count: 7, Frequency: snapshot.Daily}},
	}
	binding := ClusterBinding{Name: "c1", Pool: "pool", Adapter: adapter, Live: live}
	p := &Producer{Clusters: []ClusterBinding{binding}, Backup: backup, LockDir: t.TempDir()}

	require.NoError(t, Run(ctx, p, backup, 2, p.LockDir, nil))

	liveSnaps, err := live.Snapshots(ctx, "pool/x")
	require.NoError(t, err)
	require.Len(t, liveSnaps, 1)

	backupSnaps, err := backup.Snapshots(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, liveSnaps, backupSnaps)
}
