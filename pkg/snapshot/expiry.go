package snapshot

import (
	"log/slog"
	"time"
)

// IsExpired reports whether n has passed its retention window as of now.
// profiles is the live configuration table; treatAsLast extends the window
// by extraRetention and should be set only when n is the sole remaining
// snapshot on the backup side (spec.md §4.2, P5).
//
// A profile absent from the table is never reported as expired — the
// caller gets (false, false) back, knownProfile being false, so it can log a
// warning and decide for itself whether absence means "keep" (backup-side
// retention, spec.md §7 ErrCodeConfigMissing) or "delete" (live-side
// orphan cleanup, spec.md §4.7).
func IsExpired(n Name, profiles Table, treatAsLast bool, extraRetention time.Duration, now time.Time) (expired, knownProfile bool) {
	profile, ok := profiles[n.Profile]
	if !ok {
		slog.Warn("snapshot under unknown profile", "profile", n.Profile, "snapshot", n.Format())
		return false, false
	}
	window, err := profile.Duration()
	if err != nil {
		slog.Warn("snapshot profile has invalid frequency", "profile", n.Profile, "error", err)
		return false, true
	}
	expiresAt := n.Timestamp.Add(window)
	if treatAsLast {
		expiresAt = expiresAt.Add(extraRetention)
	}
	return !expiresAt.After(now), true
}
