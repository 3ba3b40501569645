package system

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// treeGroup tracks members by pid. Every process started by StartProcess
// leads its own process group, so descendants that escape the process tree
// through re-parenting are still reachable by process group.
type treeGroup struct {
	killOnClose bool
	self        int // process group of the supervisor, never signalled
	members     map[int]*treeMember

	// usage of retired members whose pid was later reused by a new member
	retiredUsage time.Duration
}

type treeMember struct {
	pgid    int
	retired bool
	usage   time.Duration // final usage if retired, else highest sample
}

func newGroupPrimitive(killOnClose bool) (groupPrimitive, error) {
	if _, err := os.Stat("/proc/self/stat"); err != nil {
		return nil, errors.Wrap(err, "procfs is required for process groups")
	}
	return &treeGroup{
		killOnClose: killOnClose,
		self:        unix.Getpgrp(),
		members:     make(map[int]*treeMember),
	}, nil
}

func (g *treeGroup) add(pid int) error {
	pgid, err := unix.Getpgid(pid)
	if err != nil {
		return errors.Wrapf(err, "failed to lookup process group of %d", pid)
	}
	if pgid == g.self {
		pgid = 0
	}
	m, ok := g.members[pid]
	if ok && !m.retired {
		return nil
	}
	if ok {
		g.retiredUsage += m.usage
	}
	g.members[pid] = &treeMember{pgid: pgid}
	return nil
}

func (g *treeGroup) retire(pid int, usage time.Duration) {
	m, ok := g.members[pid]
	if !ok || m.retired {
		return
	}
	m.retired = true
	if usage > m.usage {
		m.usage = usage
	}
}

func (g *treeGroup) cpuTime() time.Duration {
	total := g.retiredUsage
	var tree processTree
	for pid, m := range g.members {
		if !m.retired {
			if tree == nil {
				var err error
				if tree, err = snapshotProcessTree(); err != nil {
					tree = processTree{}
				}
			}
			if usage, ok := sampleCPU(pid, tree); ok && usage > m.usage {
				m.usage = usage
			}
		}
		total += m.usage
	}
	return total
}

func (g *treeGroup) terminate() error {
	var result error
	for pid, m := range g.members {
		if !m.retired {
			if err := killProcessTree(pid); err != nil && result == nil {
				result = err
			}
		}
		// A retired leader may have had its pid, and thus the process group
		// id, recycled. Only signal the group while nothing reuses the id.
		if m.pgid == 0 || (m.retired && unix.Kill(m.pgid, 0) != unix.ESRCH) {
			continue
		}
		err := unix.Kill(-m.pgid, unix.SIGKILL)
		if err != nil && err != unix.ESRCH && result == nil {
			result = errors.Wrapf(err, "failed to kill process group %d", m.pgid)
		}
	}
	return result
}

func (g *treeGroup) close() error {
	if g.killOnClose {
		return g.terminate()
	}
	return nil
}
