package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacoski/backurne/pkg/restore"
	"github.com/lacoski/backurne/pkg/stats"
)

func TestStatsCmdPrintsStubPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	cmd := statsCmd(stats.Stub{})
	require.NoError(t, cmd.Action(context.Background(), cmd))
	assert.Contains(t, buf.String(), "no backend configured")
}

func TestMapCmdRejectsWrongArgCount(t *testing.T) {
	cmd := mapCmd(restore.Stub{})
	assert.Equal(t, "map", cmd.Name)
	assert.Equal(t, "RBD SNAPSHOT", cmd.ArgsUsage)
	assert.Error(t, cmd.Action(context.Background(), cmd))
}

func TestRootBuildsEveryCommand(t *testing.T) {
	root := Root("test")
	names := make(map[string]bool)
	for _, c := range root.Commands {
		names[c.Name] = true
	}
	for _, want := range []string{"backup", "precheck", "check-snap", "check", "stats", "ls", "list-mapped", "map", "unmap"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
