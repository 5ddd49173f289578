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

// Backup runs the backup-side expiration pass (spec.md §4.7) over images,
// bounded to concurrency images in flight at once. reporter may be nil.
func Backup(ctx context.Context, backup driver.Driver, lockDir string, profiles snapshot.Table, extraRetention time.Duration, concurrency int, images []string, reporter *status.Reporter) error {
	return forEach(ctx, concurrency, images, func(ctx context.Context, image string) {
		if reporter != nil {
			reporter.AddItem()
			defer reporter.DoneItem()
		}
		expireBackupImage(ctx, backup, lockDir, profiles, extraRetention, image)
	})
}

func expireBackupImage(ctx context.Context, backup driver.Driver, lockDir string, profiles snapshot.Table, extraRetention time.Duration, image string) {
	img, err := lock.Acquire(lockDir, image)
	if err != nil {
		slog.Debug("backup expiry: lock contended, skipping", "image", image)
		return
	}
	defer img.Release()

	snaps, err := backup.Snapshots(ctx, image)
	if err != nil {
		slog.Error("backup expiry: list snapshots failed", "image", image, "error", err)
		return
	}
	if len(snaps) == 0 {
		if err := backup.RmImage(ctx, image); err != nil {
			slog.Error("backup expiry: delete orphaned image failed", "image", image, "error", err)
		}
		return
	}

	sort.Strings(snaps)
	last := snaps[len(snaps)-1]
	now := time.Now()

	for _, raw := range snaps[:len(snaps)-1] {
		n, ok := snapshot.Parse(raw)
		if !ok {
			continue
		}
		expired, _ := snapshot.IsExpired(n, profiles, false, extraRetention, now)
		if !expired {
			continue
		}
		if err := backup.RmSnap(ctx, image, raw); err != nil {
			slog.Error("backup expiry: delete snapshot failed", "image", image, "snapshot", raw, "error", err)
		}
	}

	remaining, err := backup.Snapshots(ctx, image)
	if err != nil {
		slog.Error("backup expiry: re-list snapshots failed", "image", image, "error", err)
		return
	}
	if len(remaining) == 1 && remaining[0] == last {
		n, ok := snapshot.Parse(last)
		if ok {
			expired, _ := snapshot.IsExpired(n, profiles, true, extraRetention, now)
			if expired {
				if err := backup.RmSnap(ctx, image, last); err != nil {
					slog.Error("backup expiry: delete last snapshot failed", "image", image, "snapshot", last, "error", err)
				}
				remaining = nil
			}
		}
	}

	if len(remaining) == 0 {
		if err := backup.RmImage(ctx, image); err != nil {
			slog.Error("backup expiry: delete emptied image failed", "image", image, "error", err)
		}
	}
}
