package atomics

import "sync"

// closedChannel is returned from Once.Done() after Once.Do() has completed.
var closedChannel = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Once is similar to sync.Once except that Do() reports if it was the call
// that ran f, and callers can block on, or select over, completion using
// Wait() and Done().
//
// Once.Do(nil) is allowed and resolves the Once without calling anything.
type Once struct {
	m    sync.Mutex
	done Bool
	c    chan struct{}
}

// Do calls f() and returns true, if this is the first call to Do(). All
// following calls to Do() return false without calling f().
func (o *Once) Do(f func()) bool {
	if o.done.Get() {
		return false
	}

	o.m.Lock()
	defer o.m.Unlock()

	if o.done.Get() {
		return false
	}

	// Resolve even if f() panics, so that waiters don't block forever
	defer func() {
		o.done.Set(true)
		if o.c != nil {
			close(o.c)
		}
	}()

	if f != nil {
		f()
	}
	return true
}

// IsDone returns true, if Do() has completed.
func (o *Once) IsDone() bool {
	return o.done.Get()
}

// Done returns a channel that is closed when Do() has completed.
func (o *Once) Done() <-chan struct{} {
	if o.done.Get() {
		return closedChannel
	}

	o.m.Lock()
	defer o.m.Unlock()

	if o.done.Get() {
		return closedChannel
	}
	if o.c == nil {
		o.c = make(chan struct{})
	}
	return o.c
}

// Wait blocks until Do() has completed.
func (o *Once) Wait() {
	<-o.Done()
}
