package cluster

import (
	"context"
	"strings"

	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/snapshot"
)

// PlainAdapter treats every image in a pool as its own backup unit, with no
// VM inventory and no freeze/thaw concept.
type PlainAdapter struct {
	Pool        string
	ClusterName string
	FQDN        string
	BackupPool  string
	Live        driver.Driver
	Profiles    snapshot.Table
	ProfilesAPI *ProfilesAPIClient
}

// ListUnits returns one Unit per image in the pool, each with a single disk.
func (a *PlainAdapter) ListUnits(ctx context.Context) ([]Unit, error) {
	images, err := a.Live.ListImages(ctx, a.Pool)
	if err != nil {
		return nil, err
	}
	units := make([]Unit, 0, len(images))
	for _, image := range images {
		units = append(units, Unit{
			ID:   image,
			Name: image,
			Disks: []Disk{{
				RBD:          image,
				BackupTarget: a.backupTarget(image),
			}},
		})
	}
	return units, nil
}

// backupTarget derives the destination image id from the live image's
// cluster and local name (spec.md §3, "Backup image / destination image").
func (a *PlainAdapter) backupTarget(image string) string {
	local := strings.TrimPrefix(image, a.Pool+"/")
	if a.ClusterName != "" {
		local = a.ClusterName + "_" + local
	}
	if a.BackupPool == "" {
		return local
	}
	return a.BackupPool + "/" + local
}

func (a *PlainAdapter) ProfilesFor(ctx context.Context, unit Unit, disk Disk) ([]ProfileEntry, bool, error) {
	return resolveProfiles(ctx, a.Profiles, a.ProfilesAPI, "plain", a.ClusterName, a.FQDN, unit, disk)
}

// Freeze is a no-op: a plain image pool has no filesystem to quiesce.
func (a *PlainAdapter) Freeze(ctx context.Context, unit Unit) error { return nil }

// Thaw is a no-op, mirroring Freeze.
func (a *PlainAdapter) Thaw(ctx context.Context, unit Unit) error { return nil }

var _ Adapter = (*PlainAdapter)(nil)
