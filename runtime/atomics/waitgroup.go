package atomics

import (
	"errors"
	"sync"
)

// ErrWaitGroupDraining is returned by WaitGroup.Add when a positive delta is
// added after Drain or WaitAndDrain.
var ErrWaitGroupDraining = errors.New("atomics.WaitGroup is draining")

// WaitGroup counts outstanding goroutines like sync.WaitGroup, but can be
// drained: after draining the counter can only go down, so Add may race with
// a final WaitAndDrain.
type WaitGroup struct {
	m        sync.Mutex
	count    int
	draining bool
	idle     chan struct{} // non-nil while count > 0, closed when it hits zero
}

// Add adds delta to the counter. It panics if the counter goes negative.
func (wg *WaitGroup) Add(delta int) error {
	wg.m.Lock()
	defer wg.m.Unlock()

	if delta > 0 && wg.draining {
		return ErrWaitGroupDraining
	}
	if wg.count+delta < 0 {
		panic("atomics: negative WaitGroup counter")
	}
	if wg.count == 0 && delta > 0 {
		wg.idle = make(chan struct{})
	}
	wg.count += delta
	if wg.count == 0 && wg.idle != nil {
		close(wg.idle)
		wg.idle = nil
	}
	return nil
}

// Done decrements the counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Drain makes every following Add with a positive delta fail.
func (wg *WaitGroup) Drain() {
	wg.m.Lock()
	wg.draining = true
	wg.m.Unlock()
}

// Wait blocks until the counter is zero.
func (wg *WaitGroup) Wait() {
	wg.m.Lock()
	idle := wg.idle
	wg.m.Unlock()

	if idle != nil {
		<-idle
	}
}

// WaitAndDrain drains the group and waits for the counter to reach zero.
func (wg *WaitGroup) WaitAndDrain() {
	wg.Drain()
	wg.Wait()
}
