package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacoski/backurne/pkg/errors"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir, "rbd/vm-100-disk-0")
	require.NoError(t, err)
	assert.Equal(t, "rbd_vm-100-disk-0", l.Key())

	require.NoError(t, l.Release())
}

func TestAcquireContention(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir, "rbd/vm-100-disk-0")
	require.NoError(t, err)
	defer first.Release()

	_, err = Acquire(dir, "rbd/vm-100-disk-0")
	require.Error(t, err)

	var se *errors.StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.ErrCodeContended, se.Code)
}

func TestReleaseOnNilIsSafe(t *testing.T) {
	var l *Image
	assert.NoError(t, l.Release())
}

func TestSanitizeStripsPathSeparators(t *testing.T) {
	assert.Equal(t, "a_b_c", sanitize("a/b/c"))
}
