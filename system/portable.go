package system

import (
	"io"
	"os"
	"os/exec"

	"github.com/pkg/errors"
	"github.com/taskcluster/procsup/runtime/atomics"
	"github.com/taskcluster/procsup/runtime/ioext"
)

// portableStrategy relies on os/exec alone. Merged output is copied from both
// pipes into one ChunkQueue by background loops.
type portableStrategy struct{}

func (portableStrategy) spawn(r *spawnRequest) (processHandle, error) {
	if r.sandbox != nil {
		return nil, ErrSandboxUnsupported
	}
	var h *portableHandle
	err := retrySpawn(r, func() error {
		var err error
		h, err = startPortable(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := joinGroups(r.groups, h, r.log); err != nil {
		h.kill()
		h.wait()
		h.release()
		return nil, err
	}
	return h, nil
}

type portableHandle struct {
	cmd    *exec.Cmd
	in     io.WriteCloser
	pipes  []io.ReadCloser // stdout, stderr
	queue  *ioext.ChunkQueue
	loops  atomics.WaitGroup
	merged bool
}

func startPortable(r *spawnRequest) (*portableHandle, error) {
	ProcessCreationLock.Lock()
	defer ProcessCreationLock.Unlock()

	cmd := r.command()
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create stdin pipe")
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		in.Close()
		return nil, errors.Wrap(err, "failed to create stdout pipe")
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		in.Close()
		out.Close()
		return nil, errors.Wrap(err, "failed to create stderr pipe")
	}
	if err := cmd.Start(); err != nil {
		// Start closes the pipes it created
		return nil, errors.Wrapf(err, "failed to start %s in %s", r.commandLine(), cmd.Dir)
	}

	h := &portableHandle{
		cmd:    cmd,
		in:     in,
		pipes:  []io.ReadCloser{out, errPipe},
		merged: r.flags.Has(MergeOutput),
	}
	if h.merged {
		q, writers := ioext.NewChunkQueue(r.limits.ChunkSize, r.limits.QueueDepth, len(h.pipes))
		h.queue = q
		for i, pipe := range h.pipes {
			h.loops.Add(1)
			go func(w io.WriteCloser, pipe io.Reader) {
				defer h.loops.Done()
				if _, err := ioext.CopyAndClose(w, pipe); err != nil {
					debug("merged output copy loop stopped: %s", err)
				}
			}(writers[i], pipe)
		}
	}
	debug("started pid %d (portable): %s", cmd.Process.Pid, r.commandLine())
	return h, nil
}

func (h *portableHandle) Pid() int {
	return h.cmd.Process.Pid
}

func (h *portableHandle) stdin() io.WriteCloser {
	return h.in
}

func (h *portableHandle) stdout() io.Reader {
	if h.merged {
		return h.queue
	}
	return h.pipes[0]
}

func (h *portableHandle) stderr() io.Reader {
	if h.merged {
		return nil
	}
	return h.pipes[1]
}

// wait uses Process.Wait, exec.Cmd.Wait would close the pipes while output
// may still be unread.
func (h *portableHandle) wait() (*os.ProcessState, error) {
	return h.cmd.Process.Wait()
}

func (h *portableHandle) kill() error {
	err := killProcessTree(h.Pid())
	if kerr := h.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) && err == nil {
		err = kerr
	}
	return err
}

func (h *portableHandle) release() error {
	if h.queue != nil {
		h.queue.Close()
	}
	var result error
	if err := h.in.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		result = err
	}
	for _, pipe := range h.pipes {
		pipe.Close()
	}
	h.loops.WaitAndDrain()
	return result
}
