package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// fileLock is an exclusive advisory lock held beside the task document.
type fileLock struct {
	flk *flock.Flock
}

// acquireLock takes <path>.lock, waiting up to timeout for another writer.
func acquireLock(ctx context.Context, path string, timeout time.Duration) (*fileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	flk := flock.New(path + ".lock")
	locked, err := flk.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", flk.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: held by another process", flk.Path())
	}
	return &fileLock{flk: flk}, nil
}

// Release releases the lock.
func (l *fileLock) Release() error {
	if l == nil || l.flk == nil {
		return nil
	}
	return l.flk.Unlock()
}
