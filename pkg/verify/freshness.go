package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/snapshot"
)

// FreshnessThreshold is the maximum age an incremental anchor may have
// before precheck flags it stale (spec.md §4.8, P8: "now - 30h").
const FreshnessThreshold = 30 * time.Hour

// Freshness runs the precheck pass over targets in parallel, bounded to
// concurrency images in flight at once, grounded on the same
// errgroup.WithContext fan-out idiom pkg/pipeline and pkg/expire use.
func Freshness(ctx context.Context, live, backup driver.Driver, concurrency int, targets []Target, now time.Time) ([]Finding, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var findings []Finding

	for _, target := range targets {
		target := target
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			if f, ok := checkFreshness(ctx, live, backup, target, now); ok {
				mu.Lock()
				findings = append(findings, f)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return findings, nil
}

func checkFreshness(ctx context.Context, live, backup driver.Driver, target Target, now time.Time) (Finding, bool) {
	liveSnaps, err := live.Snapshots(ctx, target.Image)
	if err != nil {
		return Finding{Cluster: target.Cluster, Image: target.Image, Message: "missing"}, true
	}
	backupSnaps, err := backup.Snapshots(ctx, target.Destination)
	if err != nil {
		return Finding{Cluster: target.Cluster, Image: target.Image, Message: "missing"}, true
	}
	if len(backupSnaps) == 0 {
		return Finding{Cluster: target.Cluster, Image: target.Image, Message: "missing"}, true
	}

	anchor := snapshot.Anchor(liveSnaps, backupSnaps)
	if anchor == "" {
		return Finding{Cluster: target.Cluster, Image: target.Image, Message: "no-shared-snap"}, true
	}

	n, ok := snapshot.Parse(anchor)
	if !ok {
		return Finding{Cluster: target.Cluster, Image: target.Image, Message: "no-shared-snap"}, true
	}
	if now.Sub(n.Timestamp) > FreshnessThreshold {
		return Finding{Cluster: target.Cluster, Image: target.Image, Message: fmt.Sprintf("stale(%s)", n.Timestamp.Format(time.RFC3339))}, true
	}
	return Finding{}, false
}
