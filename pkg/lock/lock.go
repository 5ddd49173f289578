package lock

import (
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/lacoski/backurne/pkg/errors"
)

// sanitize strips path separators from an image id so it can be used as a
// single lock file name.
func sanitize(imageID string) string {
	r := strings.NewReplacer("/", "_", string(filepath.Separator), "_")
	return r.Replace(imageID)
}

// Image is a held advisory lock on one image. The zero value is not usable;
// obtain one from Acquire.
type Image struct {
	key string
	fl  *flock.Flock
}

// Key is the sanitized lock key this lock was acquired under.
func (l *Image) Key() string {
	return l.key
}

// Acquire attempts to take the lock for imageID under dir, immediately and
// without blocking. On contention it returns a StructuredError carrying
// errors.ErrCodeContended; callers should treat that as "skip this image",
// not as a failure worth surfacing to the operator.
func Acquire(dir, imageID string) (*Image, error) {
	key := sanitize(imageID)
	path := filepath.Join(dir, key+".lock")
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeTransientIO, "lock: acquire", err, map[string]any{"image": imageID})
	}
	if !locked {
		return nil, errors.NewWithContext(errors.ErrCodeContended, "lock: image is held by another worker", map[string]any{"image": imageID})
	}
	return &Image{key: key, fl: fl}, nil
}

// Release gives the lock back. It is safe to call on a nil *Image.
func (l *Image) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
