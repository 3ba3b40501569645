package system

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isAlive returns false for processes that are gone or zombies.
func isAlive(pid int) bool {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := p.Status()
	if err != nil {
		return false
	}
	return status != "Z"
}

// readPids reads count pids printed one per line.
func readPids(t *testing.T, p *Process, count int) []int {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var pids []int
	for i := 0; i < count; i++ {
		line, err := p.Stdout().ReadLine(ctx)
		require.NoError(t, err)
		pid, err := strconv.Atoi(line)
		require.NoError(t, err)
		pids = append(pids, pid)
	}
	return pids
}

// Prints the pid of a child, a grandchild and an orphaned process.
const treeScript = `
sleep 60 & echo $!
sh -c 'sleep 60 & echo $!; wait' &
(sleep 60 & echo $!)
wait
`

func TestProcessTreeLinux(t *testing.T) {
	t.Run("Kill process tree", func(t *testing.T) {
		p := startShell(t, treeScript, 0)
		defer p.Dispose()
		pids := readPids(t, p, 3)
		for _, pid := range pids {
			require.True(t, isAlive(pid), "pid %d should be running", pid)
		}

		require.NoError(t, KillProcessTree(p))
		<-p.Done()
		for _, pid := range append(pids, p.Pid()) {
			pid := pid
			assert.Eventually(t, func() bool { return !isAlive(pid) }, 5*time.Second, 10*time.Millisecond,
				"pid %d survived", pid)
		}
	})

	t.Run("Group kill on close", func(t *testing.T) {
		g, err := NewGroup(true)
		require.NoError(t, err)
		p, err := StartProcess(ProcessOptions{
			Group:      g,
			Executable: testShell,
			Arguments:  []string{"-c", treeScript},
		})
		require.NoError(t, err)
		defer p.Dispose()
		pids := readPids(t, p, 3)

		g.Dispose()
		<-p.Done()
		for _, pid := range pids {
			pid := pid
			assert.Eventually(t, func() bool { return !isAlive(pid) }, 5*time.Second, 10*time.Millisecond,
				"pid %d survived", pid)
		}
	})

	t.Run("Group without kill on close", func(t *testing.T) {
		g, err := NewGroup(false)
		require.NoError(t, err)
		p, err := StartProcess(ProcessOptions{
			Group:      g,
			Executable: testShell,
			Arguments:  []string{"-c", "sleep 60"},
		})
		require.NoError(t, err)
		defer p.Dispose()

		g.Dispose()
		time.Sleep(50 * time.Millisecond)
		assert.True(t, isAlive(p.Pid()))
	})

	t.Run("Dispose kills descendants", func(t *testing.T) {
		p := startShell(t, treeScript, 0)
		pids := readPids(t, p, 3)
		p.Dispose()
		for _, pid := range pids {
			pid := pid
			assert.Eventually(t, func() bool { return !isAlive(pid) }, 5*time.Second, 10*time.Millisecond,
				"pid %d survived", pid)
		}
	})

	t.Run("Own process group", func(t *testing.T) {
		p := startShell(t, "sleep 60", 0)
		defer p.Dispose()
		pgid, err := processGroupOf(p.Pid())
		require.NoError(t, err)
		assert.Equal(t, p.Pid(), pgid)
	})
}

func TestProcessorTimeLinux(t *testing.T) {
	g, err := NewGroup(false)
	require.NoError(t, err)
	defer g.Dispose()

	p, err := StartProcess(ProcessOptions{
		Group:      g,
		Executable: testShell,
		Arguments:  []string{"-c", "i=0; while [ $i -lt 500000 ]; do i=$((i+1)); done"},
	})
	require.NoError(t, err)
	defer p.Dispose()

	var last time.Duration
	for running := true; running; {
		select {
		case <-p.Done():
			running = false
		case <-time.After(10 * time.Millisecond):
		}
		current := p.TotalProcessorTime()
		require.True(t, current >= last, "processor time decreased from %s to %s", last, current)
		last = current
	}
	require.True(t, p.Wait())
	assert.True(t, p.TotalProcessorTime() > 0)
	assert.True(t, g.TotalProcessorTime() > 0)

	p.Dispose()
	final := p.TotalProcessorTime()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, final, p.TotalProcessorTime())
}

func TestSandboxLinux(t *testing.T) {
	p, err := StartProcess(ProcessOptions{
		Executable: testShell,
		Arguments:  []string{"-c", "sleep 0.2; ulimit -n"},
		Sandbox: &SandboxPolicy{
			Owner:        &Owner{UID: uint32(os.Getuid()), GID: uint32(os.Getgid())},
			MaxOpenFiles: 64,
		},
	})
	require.NoError(t, err)
	defer p.Dispose()
	lines, err := p.Stdout().ReadAllLines()
	require.NoError(t, err)
	assert.Equal(t, []string{"64"}, lines)
}
