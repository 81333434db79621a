package errors

import "fmt"

// Wrap prefixes err with msg and keeps it matchable with errors.Is.
// A nil err stays nil, so it can wrap a call's result inline:
//
//	return errors.Wrap(os.Remove(path), "failed to remove stale lock")
//
// Wrap at package boundaries only; wrapping at every frame produces
// unreadable messages.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
//
//	return errors.Wrapf(err, "failed to read export %s", path)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}
