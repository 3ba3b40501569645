package runtime

import (
	"os"
	"os/signal"

	"github.com/taskcluster/procsup/runtime/atomics"
)

var debug = Debug("runtime")

// Stoppable is anything with a life-cycle that can be stopped.
type Stoppable interface {
	// StopGracefully asks for a clean shutdown, like closing stdin of a child
	// process and waiting for it to exit.
	StopGracefully()
	// StopNow stops immediately, terminating whatever is running.
	StopNow()
}

// LifeCycleTracker implements Stoppable as two atomics.Once that can be
// waited for. StopNow implies StopGracefully.
type LifeCycleTracker struct {
	StoppingNow        atomics.Once
	StoppingGracefully atomics.Once
}

// StopNow resolves StoppingGracefully and StoppingNow.
func (s *LifeCycleTracker) StopNow() {
	s.StoppingGracefully.Do(nil)
	s.StoppingNow.Do(nil)
}

// StopGracefully resolves StoppingGracefully.
func (s *LifeCycleTracker) StopGracefully() {
	s.StoppingGracefully.Do(nil)
}

// StopOnSignal calls s.StopGracefully() on the first of the given signals and
// s.StopNow() on the second. The returned function stops listening.
func StopOnSignal(s Stoppable, signals ...os.Signal) func() {
	c := make(chan os.Signal, 2)
	done := make(chan struct{})
	signal.Notify(c, signals...)
	go func() {
		count := 0
		for {
			select {
			case sig := <-c:
				count++
				if count == 1 {
					debug("received %s, stopping gracefully", sig)
					s.StopGracefully()
				} else {
					debug("received %s, stopping now", sig)
					s.StopNow()
				}
			case <-done:
				return
			}
		}
	}()
	var once atomics.Once
	return func() {
		once.Do(func() {
			signal.Stop(c)
			close(done)
		})
	}
}
