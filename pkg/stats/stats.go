package stats

import (
	"context"
	"fmt"
	"io"
)

// Reporter prints a summary of the current backup estate (spec.md §6,
// `stats`). A concrete implementation is out of scope per spec.md §1.
type Reporter interface {
	PrintStats(ctx context.Context, w io.Writer) error
}

// Stub is the default Reporter: it reports that no stats backend is
// configured rather than pretending to have data.
type Stub struct{}

func (Stub) PrintStats(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, "stats: no backend configured")
	return err
}

var _ Reporter = Stub{}
