package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/lacoski/backurne/pkg/cluster"
	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/errors"
	"github.com/lacoski/backurne/pkg/lock"
	"github.com/lacoski/backurne/pkg/snapshot"
	"github.com/lacoski/backurne/pkg/status"
)

// ClusterBinding pairs one configured live cluster with its adapter and
// driver, as assembled by pkg/engine from config.Config.
type ClusterBinding struct {
	Name    string
	Pool    string
	Adapter cluster.Adapter
	Live    driver.Driver
}

// Producer implements C5: it discovers backup units across every configured
// live cluster, takes due snapshots under the image lock inside a freeze
// window, and emits one Batch per unit.
type Producer struct {
	Clusters []ClusterBinding
	Backup   driver.Driver
	LockDir  string
	Reporter *status.Reporter
	Now      func() time.Time
}

// contended reports whether err is lock.Acquire's contention sentinel, as
// opposed to a genuine I/O failure.
func contended(err error) bool {
	se, ok := err.(*errors.StructuredError)
	return ok && se.Code == errors.ErrCodeContended
}

func (p *Producer) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run discovers and snapshots every unit across every configured cluster,
// writing one Batch per unit to out, then closes out. It never returns an
// error for per-unit failures (those are logged and the unit is skipped);
// it only returns an error if a cluster's ListUnits call itself fails.
func (p *Producer) Run(ctx context.Context, out chan<- Batch) error {
	defer close(out)

	for _, cb := range p.Clusters {
		units, err := cb.Adapter.ListUnits(ctx)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeTransientIO, "pipeline: list units", err, map[string]any{"cluster": cb.Name})
		}
		for _, unit := range units {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			jobs := p.processUnit(ctx, cb, unit)
			if len(jobs) == 0 {
				continue
			}
			select {
			case out <- Batch{Jobs: jobs}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// processUnit runs one unit's freeze window and returns the jobs produced
// for it. The freeze window is always exited, even when a disk's snapshot
// creation fails partway through (spec.md §4.5).
func (p *Producer) processUnit(ctx context.Context, cb ClusterBinding, unit cluster.Unit) []TransferJob {
	if err := cb.Adapter.Freeze(ctx, unit); err != nil {
		slog.Error("freeze failed, skipping unit", "unit", unit.ID, "cluster", cb.Name, "error", err)
		return nil
	}
	defer func() {
		if err := cb.Adapter.Thaw(ctx, unit); err != nil {
			slog.Error("thaw failed", "unit", unit.ID, "cluster", cb.Name, "error", err)
		}
	}()

	var jobs []TransferJob
	for _, disk := range unit.Disks {
		jobs = append(jobs, p.processDisk(ctx, cb, unit, disk)...)
	}
	return jobs
}

func (p *Producer) processDisk(ctx context.Context, cb ClusterBinding, unit cluster.Unit, disk cluster.Disk) []TransferJob {
	profiles, ok, err := cb.Adapter.ProfilesFor(ctx, unit, disk)
	if err != nil {
		slog.Error("profile resolution failed, skipping disk", "disk", disk.RBD, "error", err)
		return nil
	}
	if !ok {
		slog.Info("disk skipped by profiles API", "disk", disk.RBD)
		return nil
	}

	img, err := lock.Acquire(p.LockDir, disk.RBD)
	if err != nil {
		if p.Reporter != nil && contended(err) {
			p.Reporter.LockContended()
		}
		slog.Debug("disk lock contended, skipping", "disk", disk.RBD)
		return nil
	}
	defer img.Release()

	var jobs []TransferJob
	for _, entry := range profiles {
		if p.Reporter != nil {
			p.Reporter.AddItem()
		}
		due, err := p.profileDue(ctx, cb.Live, disk.RBD, entry)
		if err != nil {
			slog.Error("checking profile due failed", "disk", disk.RBD, "profile", entry.Name, "error", err)
			if p.Reporter != nil {
				p.Reporter.DoneItem()
			}
			continue
		}
		if !due {
			if p.Reporter != nil {
				p.Reporter.DoneItem()
			}
			continue
		}

		job, err := p.createSnap(ctx, cb.Live, disk, entry)
		if err != nil {
			slog.Error("snapshot creation failed", "disk", disk.RBD, "profile", entry.Name, "error", err)
			if p.Reporter != nil {
				p.Reporter.DoneItem()
			}
			continue
		}
		// The consumer reports this item done once the job is transferred
		// or skipped.
		jobs = append(jobs, job)
	}
	return jobs
}

// profileDue reports whether the newest snapshot of this profile on the
// live side is old enough that a new one is due (the Go analogue of the
// original's bck.check_profile(profile)).
func (p *Producer) profileDue(ctx context.Context, live driver.Driver, image string, entry cluster.ProfileEntry) (bool, error) {
	names, err := live.Snapshots(ctx, image)
	if err != nil {
		return false, err
	}

	var newest *snapshot.Name
	for _, raw := range names {
		n, ok := snapshot.Parse(raw)
		if !ok || n.Profile != entry.Name {
			continue
		}
		if newest == nil || n.Timestamp.After(newest.Timestamp) {
			cp := n
			newest = &cp
		}
	}
	if newest == nil {
		return true, nil
	}
	unit, err := entry.Profile.Frequency.Interval()
	if err != nil {
		return false, err
	}
	return !p.now().Before(newest.Timestamp.Add(unit)), nil
}

// createSnap makes the live-side snapshot and derives the resulting
// TransferJob's anchor/target pair against the backup side.
func (p *Producer) createSnap(ctx context.Context, live driver.Driver, disk cluster.Disk, entry cluster.ProfileEntry) (TransferJob, error) {
	name := snapshot.New(entry.Name, entry.Profile.Count, p.now())
	if err := live.MakeSnap(ctx, disk.RBD, name.Format()); err != nil {
		return TransferJob{}, err
	}

	liveSnaps, err := live.Snapshots(ctx, disk.RBD)
	if err != nil {
		return TransferJob{}, err
	}
	backupSnaps, _ := p.Backup.Snapshots(ctx, disk.BackupTarget)

	anchor := snapshot.Anchor(liveSnaps, backupSnaps)

	job := TransferJob{
		ImageID:            disk.RBD,
		TargetSnap:         name.Format(),
		DestinationImageID: disk.BackupTarget,
		LockKey:            disk.BackupTarget,
	}
	if anchor != "" {
		job.AnchorSnap = &anchor
	}
	return job, nil
}
