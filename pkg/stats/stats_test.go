package stats

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubPrintsPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Stub{}.PrintStats(context.Background(), &buf))
	assert.Contains(t, buf.String(), "no backend configured")
}
