package expire

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/lock"
	"github.com/lacoski/backurne/pkg/snapshot"
	"github.com/lacoski/backurne/pkg/status"
)

// LiveTarget names one live image and the backup-side image it is paired
// with, as needed to compute the shared anchor for live-side expiration.
type LiveTarget struct {
	Image       string
	Destination string
}

// Live runs the live-side expiration pass (spec.md §4.7) over targets,
// bounded to concurrency images in flight at once. reporter may be nil.
func Live(ctx context.Context, live, backup driver.Driver, lockDir string, profiles snapshot.Table, concurrency int, targets []LiveTarget, reporter *status.Reporter) error {
	return forEach(ctx, concurrency, targets, func(ctx context.Context, t LiveTarget) {
		if reporter != nil {
			reporter.AddItem()
			defer reporter.DoneItem()
		}
		expireLiveImage(ctx, live, backup, lockDir, profiles, t)
	})
}

func expireLiveImage(ctx context.Context, live, backup driver.Driver, lockDir string, profiles snapshot.Table, t LiveTarget) {
	img, err := lock.Acquire(lockDir, t.Image)
	if err != nil {
		slog.Debug("live expiry: lock contended, skipping", "image", t.Image)
		return
	}
	defer img.Release()

	liveSnaps, err := live.Snapshots(ctx, t.Image)
	if err != nil {
		slog.Error("live expiry: list snapshots failed", "image", t.Image, "error", err)
		return
	}
	backupSnaps, err := backup.Snapshots(ctx, t.Destination)
	if err != nil {
		slog.Error("live expiry: list backup snapshots failed", "image", t.Image, "error", err)
		return
	}

	anchor := snapshot.Anchor(liveSnaps, backupSnaps)
	var anchorTime time.Time
	if anchor != "" {
		if n, ok := snapshot.Parse(anchor); ok {
			anchorTime = n.Timestamp
		}
	}

	byProfile := make(map[string][]snapshot.Name)
	for _, raw := range liveSnaps {
		n, ok := snapshot.Parse(raw)
		if !ok {
			continue
		}
		if !anchorTime.IsZero() && !n.Timestamp.Before(anchorTime) {
			continue
		}
		byProfile[n.Profile] = append(byProfile[n.Profile], n)
	}

	for profileName, names := range byProfile {
		sort.Slice(names, func(i, j int) bool { return names[i].Timestamp.After(names[j].Timestamp) })

		limit := 0
		if p, ok := profiles[profileName]; ok {
			limit = p.LiveLimit()
		}
		for i, n := range names {
			if i < limit {
				continue
			}
			if err := live.RmSnap(ctx, t.Image, n.Format()); err != nil {
				slog.Error("live expiry: delete snapshot failed", "image", t.Image, "snapshot", n.Format(), "error", err)
			}
		}
	}
}
