package cluster

import "github.com/lacoski/backurne/pkg/snapshot"

// Disk is one block device attached to a Unit.
type Disk struct {
	// RBD is the live-side image identifier (pool/name).
	RBD string
	// Adapter is the bus/controller the disk is attached on (e.g. "virtio0");
	// plain clusters leave this empty.
	Adapter string
	// BackupTarget is the destination image identifier on the backup
	// cluster.
	BackupTarget string
}

// Unit is one backup unit as enumerated by Adapter.ListUnits: a VM on a
// virtualization cluster, or a single image on a plain cluster.
type Unit struct {
	ID     string
	Name   string
	Node   string
	SMBIOS string
	Disks  []Disk
}

// ProfileEntry names one retention profile and its configuration, as
// returned by Adapter.ProfilesFor after merging the global table with any
// profiles-API response.
type ProfileEntry struct {
	Name    string
	Profile snapshot.ProfileConfig
}
