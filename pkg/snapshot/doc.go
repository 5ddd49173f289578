// Package snapshot implements the canonical snapshot naming scheme and the
// expiration rules that decide when a managed snapshot may be deleted.
//
// # Naming
//
// A managed snapshot name is four semicolon-delimited fields:
//
//	tag;profile;count;timestamp
//
// tag is a literal marker that distinguishes tool-managed snapshots from
// foreign ones; profile is a retention class name (e.g. "hourly", "daily");
// count is the retention value in effect when the snapshot was created; and
// timestamp is an RFC3339 instant. Because the timestamp is the last field
// and is itself lexicographically ordered, the full name sorts the same way
// temporally and lexically for any fixed tag/profile pair — callers may take
// max(names) to find the newest snapshot of a set.
//
// # Expiration
//
// A profile table maps profile names to a retention Count, a Frequency
// (hourly or daily), and an optional MaxOnLive override. IsExpired computes
// expires_at = timestamp + Duration(profile) and, when the snapshot is the
// last one remaining on the backup side, extends that deadline by a
// configured grace period. Snapshots under a profile no longer present in
// the table are never reported as expired by this package — the decision to
// treat a missing profile as "delete everything" belongs to the live-side
// expirer (spec.md §4.7), not to this package.
package snapshot
