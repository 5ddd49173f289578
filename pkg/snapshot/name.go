package snapshot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tag is the literal marker prefix that identifies a tool-managed snapshot.
// Snapshots without this tag are foreign and must never be touched by the
// expiry or verification paths. Overridable at startup via
// config.Config.SnapshotTag; defaults to "backurne".
var Tag = "backurne"

const timeLayout = time.RFC3339

// Name is a parsed, tool-managed RBD snapshot name.
type Name struct {
	Profile   string
	Count     int
	Timestamp time.Time
}

// Format renders n back into its wire form: tag;profile;count;timestamp.
func (n Name) Format() string {
	return fmt.Sprintf("%s;%s;%d;%s", Tag, n.Profile, n.Count, n.Timestamp.UTC().Format(timeLayout))
}

// String satisfies fmt.Stringer with Format's output.
func (n Name) String() string {
	return n.Format()
}

// Parse decodes a raw RBD snapshot name. ok is false when raw does not carry
// the backurne tag or is otherwise malformed — callers should treat such
// names as foreign and leave them alone rather than treat the failure as
// fatal.
func Parse(raw string) (n Name, ok bool) {
	fields := strings.SplitN(raw, ";", 4)
	if len(fields) != 4 || fields[0] != Tag {
		return Name{}, false
	}
	count, err := strconv.Atoi(fields[2])
	if err != nil {
		return Name{}, false
	}
	ts, err := time.Parse(timeLayout, fields[3])
	if err != nil {
		return Name{}, false
	}
	return Name{Profile: fields[1], Count: count, Timestamp: ts}, true
}

// New builds a Name stamped with the given instant, truncated to second
// precision to match the RFC3339 wire format it round-trips through.
func New(profile string, count int, at time.Time) Name {
	return Name{Profile: profile, Count: count, Timestamp: at.UTC().Truncate(time.Second)}
}
