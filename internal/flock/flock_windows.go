//go:build windows

package flock

import (
	"errors"

	"golang.org/x/sys/windows"
)

// The first byte of the lock file stands for the whole knowledge base.
const (
	lockReserved  = 0
	lockBytesLow  = 1
	lockBytesHigh = 0
)

// Exclusive tries once to take the knowledge base lock file behind fd.
// It never blocks; a held lock surfaces as an error Contended accepts.
func Exclusive(fd uintptr) error {
	return windows.LockFileEx(
		windows.Handle(fd),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		lockReserved,
		lockBytesLow,
		lockBytesHigh,
		&windows.Overlapped{},
	)
}

// Unlock drops the knowledge base lock held through fd.
func Unlock(fd uintptr) error {
	return windows.UnlockFileEx(
		windows.Handle(fd),
		lockReserved,
		lockBytesLow,
		lockBytesHigh,
		&windows.Overlapped{},
	)
}

// Contended reports whether err means another process holds the lock.
func Contended(err error) bool {
	return errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}
