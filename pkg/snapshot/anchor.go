package snapshot

import "sort"

// Anchor returns the lexically-maximal name present in both live and
// backup, or "" when the intersection is empty — the incremental anchor of
// the shared-snapshot invariant (spec.md §3). Lexical order matches
// temporal order for tool-managed names of one profile and count (P3), so
// when every shared name has the same profile and count the maximum is
// also the newest. Across different profiles the maximum is decided by the
// profile field, not the timestamp.
func Anchor(live, backup []string) string {
	backupSet := make(map[string]struct{}, len(backup))
	for _, s := range backup {
		backupSet[s] = struct{}{}
	}
	var shared []string
	for _, s := range live {
		if _, ok := backupSet[s]; ok {
			shared = append(shared, s)
		}
	}
	if len(shared) == 0 {
		return ""
	}
	sort.Strings(shared)
	return shared[len(shared)-1]
}
