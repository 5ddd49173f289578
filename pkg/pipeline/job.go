package pipeline

// TransferJob describes one snapshot's journey from the live side to the
// backup side (spec.md §3 "Transfer job"). AnchorSnap is nil when this is
// the image's first backup (a full export).
type TransferJob struct {
	ImageID             string
	AnchorSnap          *string
	TargetSnap          string
	DestinationImageID  string
	LockKey             string
}

// Batch is the unit the Producer enqueues and a Consumer dequeues: every
// disk of one unit, snapshotted inside a single freeze window, delivered to
// one consumer so a VM's disks stay affine (spec.md §4.5 step 5).
type Batch struct {
	Jobs []TransferJob
}
