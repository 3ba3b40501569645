// Package system supervises child processes: it starts them with captured
// stdin/stdout/stderr pipes, tracks their CPU usage and guarantees that a
// child and everything it spawns can be terminated as one unit.
//
// The package provides the following types and methods.
//	system.Group
//	system.NewGroup(killOnClose bool) (*Group, error)
//	system.Group.AddProcess(m Member) error
//	system.Group.TotalProcessorTime() time.Duration
//	system.Group.Terminate() error
//	system.Group.Dispose()
//	system.Process
//	system.StartProcess(options ProcessOptions) (*Process, error)
//	system.Process.Stdout() / Stderr() *OutputStream
//	system.Process.Wait() bool
//	system.Process.Kill() error
//	system.Process.Dispose()
//	system.KillProcessTree(p *Process) error
//
// Two strategies start processes. The native strategy (linux and windows)
// creates pipes itself under ProcessCreationLock and places the child in an
// OS level group before it can spawn anything: its own process group on
// linux, job objects on windows. The portable strategy (all other platforms)
// relies on os/exec alone and merges output through background copy loops.
// The strategy is fixed per platform, never chosen per call.
package system

import "github.com/taskcluster/procsup/runtime"

var debug = runtime.Debug("system")
