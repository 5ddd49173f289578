package restore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStubReportsNotImplemented(t *testing.T) {
	var s Stub
	ctx := context.Background()

	_, err := s.ListImages(ctx)
	assert.True(t, errors.Is(err, ErrNotImplemented))

	_, err = s.ListSnapshots(ctx, "pool/x")
	assert.True(t, errors.Is(err, ErrNotImplemented))

	_, err = s.ListMapped(ctx)
	assert.True(t, errors.Is(err, ErrNotImplemented))

	assert.True(t, errors.Is(s.Mount(ctx, "pool/x", "snap"), ErrNotImplemented))
	assert.True(t, errors.Is(s.Unmount(ctx, "pool/x", "snap"), ErrNotImplemented))
}
