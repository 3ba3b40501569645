package system

import (
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func processGroupOf(pid int) (int, error) {
	return unix.Getpgid(pid)
}

type fakeMember int

func (m fakeMember) Pid() int { return int(m) }

func TestGroupLinux(t *testing.T) {
	t.Run("Dispose is idempotent", func(t *testing.T) {
		g, err := NewGroup(true)
		require.NoError(t, err)
		assert.True(t, g.KillOnClose())
		g.Dispose()
		g.Dispose()
		assert.Equal(t, ErrGroupDisposed, g.AddProcess(fakeMember(1)))
		assert.Equal(t, ErrGroupDisposed, g.Terminate())
		assert.Equal(t, time.Duration(0), g.TotalProcessorTime())
	})

	t.Run("Unknown process", func(t *testing.T) {
		g, err := NewGroup(false)
		require.NoError(t, err)
		defer g.Dispose()
		// pid_max is at most 2^22
		assert.Error(t, g.AddProcess(fakeMember(1<<23)))
	})

	t.Run("Supervisor process group is never signalled", func(t *testing.T) {
		g, err := NewGroup(false)
		require.NoError(t, err)
		defer g.Dispose()
		tg := g.primitive.(*treeGroup)
		self := fakeMember(unix.Getpid())
		require.NoError(t, g.AddProcess(self))
		assert.Equal(t, 0, tg.members[self.Pid()].pgid)
		g.retire(self.Pid(), time.Second)
		assert.Equal(t, time.Second, g.TotalProcessorTime())
	})

	t.Run("Retired usage", func(t *testing.T) {
		g, err := NewGroup(false)
		require.NoError(t, err)
		defer g.Dispose()
		tg := g.primitive.(*treeGroup)
		tg.members[1<<23] = &treeMember{usage: 3 * time.Second}
		g.retire(1<<23, 2*time.Second)
		g.retire(1<<23, 5*time.Second)
		assert.Equal(t, 3*time.Second, g.TotalProcessorTime())
	})

	t.Run("Reused pid of retired member", func(t *testing.T) {
		cmd := exec.Command("sleep", "60")
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		require.NoError(t, cmd.Start())
		exited := make(chan struct{})
		go func() {
			cmd.Wait()
			close(exited)
		}()
		defer cmd.Process.Kill()

		g, err := NewGroup(true)
		require.NoError(t, err)
		tg := g.primitive.(*treeGroup)
		pid := cmd.Process.Pid
		tg.members[pid] = &treeMember{pgid: pid, retired: true, usage: 2 * time.Second}

		require.NoError(t, g.AddProcess(fakeMember(pid)))
		assert.False(t, tg.members[pid].retired)
		assert.True(t, g.TotalProcessorTime() >= 2*time.Second)

		g.Dispose()
		select {
		case <-exited:
		case <-time.After(5 * time.Second):
			t.Fatalf("pid %d survived Dispose of a kill-on-close group", pid)
		}
	})
}
