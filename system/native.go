//go:build linux || windows

package system

import (
	"io"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

var platformStrategy strategy = nativeStrategy{}

// nativeStrategy creates the pipes itself and places the child in its groups
// before it can spawn anything.
type nativeStrategy struct{}

func (nativeStrategy) spawn(r *spawnRequest) (processHandle, error) {
	if err := checkSandbox(r.sandbox); err != nil {
		return nil, err
	}
	var h *nativeHandle
	err := retrySpawn(r, func() error {
		var err error
		h, err = startNative(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := setupNative(r, h); err != nil {
		h.kill()
		h.wait()
		h.release()
		return nil, err
	}
	return h, nil
}

type nativeHandle struct {
	cmd *exec.Cmd
	in  *os.File
	out *os.File
	err *os.File // nil when merged
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

func startNative(r *spawnRequest) (*nativeHandle, error) {
	ProcessCreationLock.Lock()
	defer ProcessCreationLock.Unlock()

	var parentEnds, childEnds []*os.File
	fail := func(err error, msg string) (*nativeHandle, error) {
		closeFiles(childEnds)
		closeFiles(parentEnds)
		return nil, errors.Wrap(err, msg)
	}

	inR, inW, err := os.Pipe()
	if err != nil {
		return fail(err, "failed to create stdin pipe")
	}
	childEnds = append(childEnds, inR)
	parentEnds = append(parentEnds, inW)

	outR, outW, err := os.Pipe()
	if err != nil {
		return fail(err, "failed to create stdout pipe")
	}
	childEnds = append(childEnds, outW)
	parentEnds = append(parentEnds, outR)

	var errR *os.File
	errW := outW
	if !r.flags.Has(MergeOutput) {
		if errR, errW, err = os.Pipe(); err != nil {
			return fail(err, "failed to create stderr pipe")
		}
		childEnds = append(childEnds, errW)
		parentEnds = append(parentEnds, errR)
	}

	cmd := r.command()
	cmd.Stdin = inR
	cmd.Stdout = outW
	cmd.Stderr = errW
	cmd.SysProcAttr = sysProcAttr(r)
	if err := startCommand(cmd); err != nil {
		closeFiles(childEnds)
		closeFiles(parentEnds)
		return nil, errors.Wrapf(err, "failed to start %s in %s", r.commandLine(), cmd.Dir)
	}
	// Only the child may hold these now, or readers never see EOF
	closeFiles(childEnds)

	debug("started pid %d: %s", cmd.Process.Pid, r.commandLine())
	return &nativeHandle{cmd: cmd, in: inW, out: outR, err: errR}, nil
}

func (h *nativeHandle) Pid() int {
	return h.cmd.Process.Pid
}

func (h *nativeHandle) stdin() io.WriteCloser {
	return h.in
}

func (h *nativeHandle) stdout() io.Reader {
	return h.out
}

func (h *nativeHandle) stderr() io.Reader {
	if h.err == nil {
		return nil
	}
	return h.err
}

func (h *nativeHandle) wait() (*os.ProcessState, error) {
	err := h.cmd.Wait()
	if h.cmd.ProcessState != nil {
		return h.cmd.ProcessState, nil
	}
	return nil, err
}

func (h *nativeHandle) kill() error {
	err := h.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (h *nativeHandle) release() error {
	var result error
	for _, f := range []*os.File{h.in, h.out, h.err} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) && result == nil {
			result = err
		}
	}
	return result
}
