package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsExpired(t *testing.T) {
	profiles := Table{
		"daily": {Count: 7, Frequency: Daily},
	}
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	fresh := New("daily", 7, now.Add(-24*time.Hour))
	expired, known := IsExpired(fresh, profiles, false, 0, now)
	assert.True(t, known)
	assert.False(t, expired)

	old := New("daily", 7, now.Add(-8*24*time.Hour))
	expired, known = IsExpired(old, profiles, false, 0, now)
	assert.True(t, known)
	assert.True(t, expired)
}

func TestIsExpiredUnknownProfileNeverExpires(t *testing.T) {
	n := New("weekly", 4, time.Now().Add(-365*24*time.Hour))
	expired, known := IsExpired(n, Table{}, false, 0, time.Now())
	assert.False(t, known)
	assert.False(t, expired)
}

func TestIsExpiredGraceExtendsLastSnapshot(t *testing.T) {
	profiles := Table{"daily": {Count: 7, Frequency: Daily}}
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	last := New("daily", 7, now.Add(-8*24*time.Hour))

	expired, _ := IsExpired(last, profiles, false, 0, now)
	assert.True(t, expired, "without grace the last snapshot is past its window")

	expired, _ = IsExpired(last, profiles, true, 6*time.Hour, now)
	assert.True(t, expired, "grace of 6h does not cover an 8h overrun")

	expired, _ = IsExpired(last, profiles, true, 48*time.Hour, now)
	assert.False(t, expired, "grace of 48h covers the overrun")
}

func TestProfileDuration(t *testing.T) {
	p := ProfileConfig{Count: 3, Frequency: Hourly}
	d, err := p.Duration()
	assert.NoError(t, err)
	assert.Equal(t, 3*time.Hour, d)

	_, err = ProfileConfig{Count: 1, Frequency: "weekly"}.Duration()
	assert.Error(t, err)
}

func TestProfileLiveLimit(t *testing.T) {
	assert.Equal(t, 1, ProfileConfig{}.LiveLimit())
	assert.Equal(t, 3, ProfileConfig{MaxOnLive: 3}.LiveLimit())
}
