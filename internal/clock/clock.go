// Package clock abstracts the wall clock so knowledge base timestamps
// can be pinned in tests.
package clock

import "time"

// Clock is an interface for time operations.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time in UTC.
type RealClock struct{}

// Now returns the current UTC time truncated to seconds, matching the
// RFC 3339 precision stored in the knowledge base.
func (RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Fixed is a Clock that always returns the same instant.
type Fixed time.Time

// Now returns the pinned instant.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}

var (
	_ Clock = RealClock{}
	_ Clock = Fixed{}
)
