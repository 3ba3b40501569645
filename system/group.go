package system

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// A Member is anything that can join a Group, typically a *Process.
type Member interface {
	Pid() int
}

// groupPrimitive is the OS specific life-cycle object behind a Group.
// Calls are serialized by Group.m.
type groupPrimitive interface {
	add(pid int) error
	// retire records the final CPU usage of a member that has been reaped
	retire(pid int, usage time.Duration)
	cpuTime() time.Duration
	terminate() error
	close() error
}

// A Group binds the life-time of a set of processes and their descendants.
//
// A Group created with killOnClose terminates all members, including
// processes they spawned, when disposed. On platforms without a suitable OS
// primitive membership is advisory only.
type Group struct {
	id          string
	killOnClose bool
	log         *logrus.Entry
	m           sync.Mutex
	disposed    bool
	final       time.Duration // CPU time at dispose
	primitive   groupPrimitive
}

// NewGroup creates a Group, failing if the OS primitive cannot be allocated.
func NewGroup(killOnClose bool) (*Group, error) {
	return newGroup(killOnClose, logrus.NewEntry(logrus.StandardLogger()))
}

func newGroup(killOnClose bool, log *logrus.Entry) (*Group, error) {
	p, err := newGroupPrimitive(killOnClose)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	debug("created group %s (killOnClose: %v)", id, killOnClose)
	return &Group{
		id:          id,
		killOnClose: killOnClose,
		log:         log.WithField("group", id),
		primitive:   p,
	}, nil
}

// KillOnClose returns true, if disposing g terminates its members.
func (g *Group) KillOnClose() bool {
	return g.killOnClose
}

// AddProcess places m in the group.
//
// Returns ErrGroupDisposed if the group has been disposed and
// ErrNestingUnsupported if m is in a group the platform cannot nest.
func (g *Group) AddProcess(m Member) error {
	g.m.Lock()
	defer g.m.Unlock()

	if g.disposed {
		return ErrGroupDisposed
	}
	return g.primitive.add(m.Pid())
}

// retire is called once a member has exited and been reaped.
func (g *Group) retire(pid int, usage time.Duration) {
	g.m.Lock()
	defer g.m.Unlock()

	if !g.disposed {
		g.primitive.retire(pid, usage)
	}
}

// TotalProcessorTime returns the user and kernel CPU time consumed by all
// current and past members of g.
func (g *Group) TotalProcessorTime() time.Duration {
	g.m.Lock()
	defer g.m.Unlock()

	if g.disposed {
		return g.final
	}
	return g.primitive.cpuTime()
}

// Terminate kills all members of g and their descendants, the group remains
// usable.
func (g *Group) Terminate() error {
	g.m.Lock()
	defer g.m.Unlock()

	if g.disposed {
		return ErrGroupDisposed
	}
	return g.primitive.terminate()
}

// Dispose releases the group. Members are terminated if the group was created
// with killOnClose. Dispose may be called more than once.
func (g *Group) Dispose() {
	g.m.Lock()
	defer g.m.Unlock()

	if g.disposed {
		return
	}
	g.disposed = true
	g.final = g.primitive.cpuTime()
	if err := g.primitive.close(); err != nil {
		g.log.WithError(err).Warn("failed to release process group")
	}
	debug("disposed group %s", g.id)
}

// advisoryGroup is used where the OS offers no group primitive.
type advisoryGroup struct{}

func (advisoryGroup) add(int) error { return nil }
func (advisoryGroup) retire(int, time.Duration) {}
func (advisoryGroup) cpuTime() time.Duration { return 0 }
func (advisoryGroup) terminate() error { return nil }
func (advisoryGroup) close() error { return nil }
