package verify

import (
	"context"
	"fmt"

	"github.com/lacoski/backurne/pkg/driver"
)

// DeepCheck runs the check-snap pass (spec.md §4.8): for every target, walk
// the shared snapshot set between live and backup and compare checksums.
// Unlike Freshness this runs strictly serially per image — checksumming
// means a full export on the live driver, and running many of those
// concurrently would defeat the point of a verification pass that is
// supposed to be gentle on the cluster.
func DeepCheck(ctx context.Context, live, backup driver.Driver, targets []Target) ([]Finding, error) {
	var findings []Finding
	for _, target := range targets {
		fs, err := deepCheckImage(ctx, live, backup, target)
		if err != nil {
			return nil, err
		}
		findings = append(findings, fs...)
	}
	return findings, nil
}

func deepCheckImage(ctx context.Context, live, backup driver.Driver, target Target) ([]Finding, error) {
	liveSnaps, err := live.Snapshots(ctx, target.Image)
	if err != nil {
		return []Finding{{Cluster: target.Cluster, Image: target.Image, Message: "missing"}}, nil
	}
	backupSnaps, err := backup.Snapshots(ctx, target.Destination)
	if err != nil || len(backupSnaps) == 0 {
		return []Finding{{Cluster: target.Cluster, Image: target.Image, Message: "missing"}}, nil
	}

	shared := intersect(liveSnaps, backupSnaps)
	var findings []Finding
	for _, snap := range shared {
		liveSum, err := live.Checksum(ctx, target.Image, snap)
		if err != nil {
			findings = append(findings, Finding{Cluster: target.Cluster, Image: target.Image, Message: fmt.Sprintf("checksum failed on live at %s: %v", snap, err)})
			continue
		}
		backupSum, err := backup.Checksum(ctx, target.Destination, snap)
		if err != nil {
			findings = append(findings, Finding{Cluster: target.Cluster, Image: target.Image, Message: fmt.Sprintf("checksum failed on backup at %s: %v", snap, err)})
			continue
		}
		if !liveSum.Equal(backupSum) {
			findings = append(findings, Finding{
				Cluster: target.Cluster,
				Image:   target.Image,
				Message: fmt.Sprintf("Divergent: %s live=%s:%s backup=%s:%s", snap, liveSum.Algorithm, liveSum.Digest, backupSum.Algorithm, backupSum.Digest),
			})
		}
	}
	return findings, nil
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
