//go:build unix

package flock

import (
	"errors"
	"syscall"
)

// Exclusive tries once to take the knowledge base lock file behind fd.
// It never blocks; a held lock surfaces as an error Contended accepts.
func Exclusive(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB)
}

// Unlock drops the knowledge base lock held through fd.
func Unlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}

// Contended reports whether err means another process holds the lock.
func Contended(err error) bool {
	return errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN)
}
