package system

import "github.com/pkg/errors"

var (
	// ErrGroupDisposed is returned when adding a process to a disposed Group.
	ErrGroupDisposed = errors.New("process group has been disposed")

	// ErrNestingUnsupported is returned from Group.AddProcess when the process
	// already belongs to a group and the platform cannot nest groups. The
	// process is still covered by the group it already belongs to, so
	// StartProcess treats this as success.
	ErrNestingUnsupported = errors.New("process already belongs to a group and groups cannot be nested")

	// ErrStreamClosed is returned from OutputStream reads after the owning
	// Process has been disposed.
	ErrStreamClosed = errors.New("output stream has been closed")

	// ErrSandboxUnsupported is returned from StartProcess when the sandbox
	// policy asks for something the platform strategy cannot enforce.
	ErrSandboxUnsupported = errors.New("sandbox policy is not supported on this platform")

	// ErrExecutableNotFound is returned from StartProcess if the executable
	// does not exist.
	ErrExecutableNotFound = errors.New("executable not found")
)
