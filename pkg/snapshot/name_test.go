package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFormatParseRoundTrip(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := New("daily", 7, at)

	raw := n.Format()
	assert.Equal(t, "backurne;daily;7;2026-01-02T03:04:05Z", raw)

	got, ok := Parse(raw)
	require.True(t, ok)
	assert.Equal(t, n, got)
}

func TestParseRejectsForeignSnapshots(t *testing.T) {
	cases := []string{
		"",
		"not-a-backurne-snap",
		"other;daily;7;2026-01-02T03:04:05Z",
		"backurne;daily;notanumber;2026-01-02T03:04:05Z",
		"backurne;daily;7;not-a-timestamp",
		"backurne;daily;7",
	}
	for _, raw := range cases {
		_, ok := Parse(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}

func TestNameLexicalOrderMatchesTemporalOrder(t *testing.T) {
	earlier := New("hourly", 24, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	later := New("hourly", 24, time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC))
	assert.Less(t, earlier.Format(), later.Format())
}
