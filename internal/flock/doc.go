// Package flock provides advisory file locking for the knowledge base.
//
// Exclusive and Unlock wrap the platform primitives. Acquire opens a lock
// file next to the guarded resource and retries a non-blocking exclusive
// lock until it succeeds, the context ends or the timeout elapses:
//
//	lock, err := flock.Acquire(ctx, kbPath+".lock", flock.DefaultTimeout)
//	if err != nil {
//	    return err
//	}
//	defer lock.Release()
package flock
