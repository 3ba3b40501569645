package system

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/taskcluster/procsup/runtime/abspath"
	"github.com/taskcluster/procsup/runtime/atomics"
)

// Upper bound on how long Dispose waits for a killed process to be reaped.
const disposeWaitTimeout = 10 * time.Second

// Process is a supervised child process.
type Process struct {
	handle    processHandle
	account   *Group // private, tracks CPU of the process and its descendants
	group     *Group // joined on behalf of the caller, may be nil
	cmdline   string
	log       *logrus.Entry
	stdin     io.WriteCloser
	stdout    *OutputStream
	stderr    *OutputStream
	startTime time.Time
	resolve   atomics.Once // resolved when the process has exited
	state     *os.ProcessState
	waitErr   error
	exitTime  time.Time
	disposed  atomics.Once
}

// StartProcess starts a process with the given options.
//
// Returns ErrExecutableNotFound if the executable does not exist, and
// ErrSandboxUnsupported if options.Sandbox cannot be enforced. Failures
// creating the process are retried when transient.
func StartProcess(options ProcessOptions) (*Process, error) {
	return startProcess(platformStrategy, options)
}

func startProcess(s strategy, options ProcessOptions) (*Process, error) {
	log := options.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	exe, err := abspath.New(options.Executable)
	if err != nil {
		return nil, errors.Wrap(err, "executable must be an absolute path")
	}
	if !exe.Exists() {
		return nil, errors.Wrapf(ErrExecutableNotFound, "no such file %s", exe)
	}
	if options.WorkingFolder != "" {
		if info, err := os.Stat(options.WorkingFolder); err != nil || !info.IsDir() {
			return nil, errors.Errorf("working folder %s does not exist", options.WorkingFolder)
		}
	}

	cmdline := commandLine(exe.String(), options.Arguments)
	log = log.WithField("command", cmdline)

	account, err := newGroup(false, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create accounting group")
	}
	groups := []*Group{account}
	if options.Group != nil {
		groups = append(groups, options.Group)
	}

	h, err := s.spawn(&spawnRequest{
		executable:    exe.String(),
		arguments:     options.Arguments,
		workingFolder: options.WorkingFolder,
		environment:   formatEnv(options.Environment),
		priority:      options.Priority,
		flags:         options.Flags,
		sandbox:       options.Sandbox,
		limits:        options.Limits.withDefaults(),
		account:       account,
		groups:        groups,
		log:           log,
	})
	if err != nil {
		account.Dispose()
		return nil, err
	}

	p := &Process{
		handle:    h,
		account:   account,
		group:     options.Group,
		cmdline:   cmdline,
		log:       log.WithField("pid", h.Pid()),
		stdin:     h.stdin(),
		stdout:    newOutputStream(h.stdout()),
		startTime: time.Now(),
	}
	if r := h.stderr(); r != nil {
		p.stderr = newOutputStream(r)
	}
	go p.waitForResult()
	p.log.Debug("process started")
	return p, nil
}

func (p *Process) waitForResult() {
	state, err := p.handle.wait()
	exitTime := time.Now()
	if state != nil {
		usage := state.UserTime() + state.SystemTime()
		p.account.retire(p.Pid(), usage)
		if p.group != nil {
			p.group.retire(p.Pid(), usage)
		}
	}
	p.resolve.Do(func() {
		p.state = state
		p.waitErr = err
		p.exitTime = exitTime
	})
	if err != nil {
		p.log.WithError(err).Error("failed to wait for process")
	} else {
		p.log.WithField("exitCode", state.ExitCode()).Debug("process exited")
	}
}

// Pid returns the process id.
func (p *Process) Pid() int {
	return p.handle.Pid()
}

// Stdin returns the writable end of the standard input pipe. Closing it
// signals end of input to the process.
func (p *Process) Stdin() io.WriteCloser {
	return p.stdin
}

// Stdout returns standard output, interleaved with standard error when
// started with MergeOutput.
func (p *Process) Stdout() *OutputStream {
	return p.stdout
}

// Stderr returns standard error, or nil when started with MergeOutput.
func (p *Process) Stderr() *OutputStream {
	return p.stderr
}

// Wait for the process to exit, returns true if the exit code was zero.
func (p *Process) Wait() bool {
	p.resolve.Wait()
	return p.waitErr == nil && p.state.Success()
}

// WaitContext waits for the process to exit or ctx to be done.
func (p *Process) WaitContext(ctx context.Context) error {
	select {
	case <-p.resolve.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed when the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.resolve.Done()
}

func (p *Process) mustHaveExited(method string) {
	if !p.resolve.IsDone() {
		panic(errors.Errorf("Process.%s() called before the process exited", method))
	}
}

// ExitCode returns the exit code, -1 if the process was terminated by a
// signal or could not be waited for. Panics if the process is running.
func (p *Process) ExitCode() int {
	p.mustHaveExited("ExitCode")
	if p.state == nil {
		return -1
	}
	return p.state.ExitCode()
}

// StartTime returns the time the process was started.
func (p *Process) StartTime() time.Time {
	return p.startTime
}

// ExitTime returns the time the process exited. Panics if the process is
// running.
func (p *Process) ExitTime() time.Time {
	p.mustHaveExited("ExitTime")
	return p.exitTime
}

// TotalProcessorTime returns user and kernel CPU time used by the process and
// its descendants.
func (p *Process) TotalProcessorTime() time.Duration {
	return p.account.TotalProcessorTime()
}

// Kill the process and its descendants.
func (p *Process) Kill() error {
	err := p.account.Terminate()
	if err == ErrGroupDisposed {
		err = nil
	}
	// Once reaped the pid may be reused, the group covers the descendants
	if p.resolve.IsDone() {
		return err
	}
	if kerr := p.handle.kill(); kerr != nil && err == nil {
		err = kerr
	}
	return err
}

// KillProcessTree kills p and all of its descendants.
func KillProcessTree(p *Process) error {
	return p.Kill()
}

// Dispose kills the process if it is running and releases all resources.
// Each step is attempted even if a previous step failed, failures are logged.
func (p *Process) Dispose() {
	p.disposed.Do(func() {
		if !p.resolve.IsDone() {
			if err := p.Kill(); err != nil {
				p.log.WithError(err).Warn("failed to kill process")
			}
		}
		select {
		case <-p.resolve.Done():
		case <-time.After(disposeWaitTimeout):
			p.log.Errorf("process not reaped %s after kill", disposeWaitTimeout)
		}
		p.stdout.close()
		if p.stderr != nil {
			p.stderr.close()
		}
		if err := p.handle.release(); err != nil {
			p.log.WithError(err).Warn("failed to release process pipes")
		}
		p.account.Dispose()
		p.log.Debug("process disposed")
	})
}

// String returns the command line of the process.
func (p *Process) String() string {
	return p.cmdline
}
