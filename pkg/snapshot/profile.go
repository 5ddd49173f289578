package snapshot

import (
	"fmt"
	"time"
)

// Frequency is the retention unit a profile counts in.
type Frequency string

const (
	Hourly Frequency = "hourly"
	Daily  Frequency = "daily"
)

// Interval returns the wall-clock duration of one retention step, or an
// error for an unrecognized frequency.
func (f Frequency) Interval() (time.Duration, error) {
	switch f {
	case Hourly:
		return time.Hour, nil
	case Daily:
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("snapshot: unknown frequency %q", f)
	}
}

// ProfileConfig is a named retention class: Count steps of Frequency length are
// kept on the backup side, and at most MaxOnLive of them are kept on the
// live side (0 means the package default of 1).
type ProfileConfig struct {
	Count     int       `yaml:"count"`
	Frequency Frequency `yaml:"frequency"`
	MaxOnLive int       `yaml:"max_on_live,omitempty"`
}

// Duration returns the retention window this profile affords a snapshot
// taken now, i.e. Count * one Frequency unit.
func (p ProfileConfig) Duration() (time.Duration, error) {
	unit, err := p.Frequency.Interval()
	if err != nil {
		return 0, err
	}
	return time.Duration(p.Count) * unit, nil
}

// LiveLimit returns the number of snapshots of this profile that may be kept
// on the live cluster simultaneously.
func (p ProfileConfig) LiveLimit() int {
	if p.MaxOnLive <= 0 {
		return 1
	}
	return p.MaxOnLive
}

// Table maps profile names to their retention ProfileConfig, as loaded from
// config.Config.Profiles.
type Table map[string]ProfileConfig
