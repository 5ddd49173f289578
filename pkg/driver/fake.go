package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/lacoski/backurne/pkg/errors"
)

// fakeImage is one image's in-memory state: its snapshot set and, per
// snapshot, the opaque content blob a real cluster would store.
type fakeImage struct {
	snaps map[string][]byte
}

// FakeDriver is an in-memory Driver used by every package in this module
// that only needs the interface's observable behavior, not a real Ceph
// cluster. Content is deterministic: a snapshot's "bytes" are its image
// id, its name, and the number of snapshots the image already carried when
// it was taken, so diffs and checksums behave consistently across calls.
type FakeDriver struct {
	mu     sync.Mutex
	images map[string]*fakeImage
}

// NewFakeDriver returns an empty FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{images: make(map[string]*fakeImage)}
}

// Seed registers image with no snapshots, as ListImages would report it.
func (f *FakeDriver) Seed(image string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure(image)
}

func (f *FakeDriver) ensure(image string) *fakeImage {
	img, ok := f.images[image]
	if !ok {
		img = &fakeImage{snaps: make(map[string][]byte)}
		f.images[image] = img
	}
	return img
}

func (f *FakeDriver) ListImages(_ context.Context, pool string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	prefix := pool + "/"
	for image := range f.images {
		if strings.HasPrefix(image, prefix) {
			out = append(out, image)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *FakeDriver) Snapshots(_ context.Context, image string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[image]
	if !ok {
		return nil, nil
	}
	var out []string
	for name := range img.snaps {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (f *FakeDriver) Checksum(_ context.Context, image, snap string) (Checksum, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[image]
	if !ok {
		return Checksum{}, errors.NewWithContext(errors.ErrCodeTransientIO, "fakedriver: no such image", map[string]any{"image": image})
	}
	content, ok := img.snaps[snap]
	if !ok {
		return Checksum{}, errors.NewWithContext(errors.ErrCodeTransientIO, "fakedriver: no such snapshot", map[string]any{"image": image, "snap": snap})
	}
	sum := sha256.Sum256(content)
	return Checksum{Algorithm: "sha256", Digest: hex.EncodeToString(sum[:])}, nil
}

func (f *FakeDriver) MakeSnap(_ context.Context, image, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	img := f.ensure(image)
	if _, exists := img.snaps[name]; exists {
		return errors.NewWithContext(errors.ErrCodeFatal, "fakedriver: snapshot already exists", map[string]any{"image": image, "snap": name})
	}
	img.snaps[name] = append([]byte(nil), []byte(fmt.Sprintf("%s:%s:%d", image, name, len(img.snaps)))...)
	return nil
}

func (f *FakeDriver) RmSnap(_ context.Context, image, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[image]
	if !ok {
		return errors.NewWithContext(errors.ErrCodeTransientIO, "fakedriver: no such image", map[string]any{"image": image})
	}
	delete(img.snaps, name)
	return nil
}

func (f *FakeDriver) RmImage(_ context.Context, image string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.images, image)
	return nil
}

func (f *FakeDriver) ExportDiff(_ context.Context, image, from, to string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[image]
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeTransientIO, "fakedriver: no such image", map[string]any{"image": image})
	}
	toContent, ok := img.snaps[to]
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeMissingAnchor, "fakedriver: no such snapshot", map[string]any{"image": image, "snap": to})
	}
	payload := toContent
	if from != "" {
		if _, ok := img.snaps[from]; !ok {
			return nil, errors.NewWithContext(errors.ErrCodeMissingAnchor, "fakedriver: no such anchor snapshot", map[string]any{"image": image, "snap": from})
		}
	}
	// rbd's wire format is self-describing: the diff stream names the
	// target snapshot it brings the destination to, so import-diff can
	// create it without a separate make-snap call. The fake mirrors that
	// by prefixing the payload with the target name.
	encoded := fmt.Sprintf("%s\x00%s", to, payload)
	return io.NopCloser(strings.NewReader(encoded)), nil
}

func (f *FakeDriver) ImportDiff(_ context.Context, destImage string, stream io.Reader) error {
	raw, err := io.ReadAll(stream)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransientIO, "fakedriver: import-diff read", err)
	}
	name, content, ok := strings.Cut(string(raw), "\x00")
	if !ok {
		return errors.New(errors.ErrCodeFatal, "fakedriver: malformed diff stream")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	img := f.ensure(destImage)
	img.snaps[name] = []byte(content)
	return nil
}

var _ Driver = (*FakeDriver)(nil)
