//go:build !windows

package system

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/process"
	"golang.org/x/sys/unix"
)

// Upper bound on rounds of stopping newly discovered descendants.
const maxStopRounds = 32

// processTree maps a pid to the pids of its children.
type processTree map[int32][]int32

func snapshotProcessTree() (processTree, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list processes")
	}
	tree := processTree{}
	for _, pid := range pids {
		p, err := process.NewProcess(pid)
		if err != nil {
			continue // exited while listing
		}
		ppid, err := p.Ppid()
		if err != nil {
			continue
		}
		tree[ppid] = append(tree[ppid], pid)
	}
	return tree, nil
}

// descendants returns all transitive children of pid, parents before children.
func (t processTree) descendants(pid int32) []int32 {
	var result []int32
	seen := map[int32]bool{pid: true}
	queue := append([]int32{}, t[pid]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		result = append(result, next)
		queue = append(queue, t[next]...)
	}
	return result
}

// sampleCPU returns user and system CPU time of pid and its live descendants,
// ok is false if pid itself could not be sampled.
func sampleCPU(pid int, tree processTree) (total time.Duration, ok bool) {
	root, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0, false
	}
	times, err := root.Times()
	if err != nil {
		return 0, false
	}
	total = cpuSeconds(times.User + times.System)
	for _, d := range tree.descendants(int32(pid)) {
		p, err := process.NewProcess(d)
		if err != nil {
			continue
		}
		if t, err := p.Times(); err == nil {
			total += cpuSeconds(t.User + t.System)
		}
	}
	return total, true
}

func cpuSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// killProcessTree kills pid and all its descendants.
//
// Processes are suspended before anything is killed, so a parent cannot
// respawn children while the tree is being torn down. Suspending repeats until
// no new descendants show up.
func killProcessTree(pid int) error {
	if err := unix.Kill(pid, unix.SIGSTOP); err != nil {
		if err == unix.ESRCH {
			return nil
		}
		return errors.Wrapf(err, "failed to stop process %d", pid)
	}
	stopped := []int{pid}
	seen := map[int32]bool{int32(pid): true}
	for round := 0; round < maxStopRounds; round++ {
		tree, err := snapshotProcessTree()
		if err != nil {
			debug("failed to list process tree of %d: %s", pid, err)
			break
		}
		found := false
		for _, d := range tree.descendants(int32(pid)) {
			if seen[d] {
				continue
			}
			seen[d] = true
			if unix.Kill(int(d), unix.SIGSTOP) == nil {
				stopped = append(stopped, int(d))
				found = true
			}
		}
		if !found {
			break
		}
	}

	var result error
	for i := len(stopped) - 1; i >= 0; i-- {
		err := unix.Kill(stopped[i], unix.SIGKILL)
		if err != nil && err != unix.ESRCH && result == nil {
			result = errors.Wrapf(err, "failed to kill process %d", stopped[i])
		}
	}
	debug("killed %d processes in tree of %d", len(stopped), pid)
	return result
}
