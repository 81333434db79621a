package flock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

const (
	// DefaultTimeout bounds how long Acquire waits for a contended lock.
	DefaultTimeout = 5 * time.Second

	retryInterval = 50 * time.Millisecond
	dirPerm       = 0o750
	filePerm      = 0o600
)

// Lock is a held advisory lock on a lock file.
type Lock struct {
	f *os.File
}

// Acquire takes an exclusive lock on path, creating the file and its
// parent directory when missing. Only contention is retried; other lock
// errors are returned immediately.
func Acquire(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file path is derived from the configured kb path
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		err := Exclusive(f.Fd())
		if err == nil {
			return &Lock{f: f}, nil
		}
		if !Contended(err) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", path, err)
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, cferrors.ErrLockTimeout)
		}

		time.Sleep(retryInterval)
	}
}

// Release unlocks and closes the lock file. The lock file itself is left
// in place so concurrent waiters keep locking the same inode.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockErr := Unlock(l.f.Fd())
	closeErr := l.f.Close()
	l.f = nil
	if unlockErr != nil {
		return fmt.Errorf("failed to unlock: %w", unlockErr)
	}
	return closeErr
}
