package system

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ProcessFlags modify how StartProcess creates a process.
type ProcessFlags uint32

const (
	// MergeOutput delivers stderr interleaved with stdout through Stdout(),
	// Stderr() returns nil.
	MergeOutput ProcessFlags = 1 << iota
	// BalanceProcessors spreads processes round-robin over NUMA nodes (linux)
	// or processor groups (windows), on single node machines it does nothing.
	BalanceProcessors
	// KillOnSupervisorExit asks the OS to kill the child if the supervisor
	// dies without disposing it. Linux only, ignored elsewhere.
	KillOnSupervisorExit
)

// Has returns true, if all bits of flag are set.
func (f ProcessFlags) Has(flag ProcessFlags) bool {
	return f&flag == flag
}

// Priority is the scheduling priority of a child process.
type Priority int

// Process priorities, on linux these map to nice values, on windows to
// priority classes.
const (
	PriorityNormal Priority = iota
	PriorityIdle
	PriorityBelowNormal
	PriorityAboveNormal
	PriorityHigh
)

var priorityNames = map[string]Priority{
	"idle":         PriorityIdle,
	"below-normal": PriorityBelowNormal,
	"normal":       PriorityNormal,
	"above-normal": PriorityAboveNormal,
	"high":         PriorityHigh,
}

// ParsePriority returns the Priority for names like "below-normal".
func ParsePriority(name string) (Priority, bool) {
	p, ok := priorityNames[name]
	return p, ok
}

// Owner identifies the user a child process runs as.
type Owner struct {
	UID uint32
	GID uint32
}

// SandboxPolicy restricts a child process. StartProcess fails with
// ErrSandboxUnsupported if the platform strategy cannot enforce a field.
type SandboxPolicy struct {
	Owner        *Owner // Run as this user, nil to run as current user
	MaxOpenFiles uint64 // Limit on open file descriptors, zero for no limit
	MaxMemory    uint64 // Limit on memory in bytes, zero for no limit
}

// Limits tunes spawning and output buffering.
type Limits struct {
	SpawnAttempts int           // Attempts when process creation fails transiently
	SpawnBackoff  time.Duration // Initial delay between attempts
	ChunkSize     int           // Size of merged output chunks (portable strategy)
	QueueDepth    int           // Number of merged output chunks in flight (portable strategy)
}

// DefaultLimits are used for fields of ProcessOptions.Limits that are zero.
var DefaultLimits = Limits{
	SpawnAttempts: 5,
	SpawnBackoff:  50 * time.Millisecond,
	ChunkSize:     4 * 1024,
	QueueDepth:    64,
}

func (l *Limits) withDefaults() Limits {
	result := DefaultLimits
	if l == nil {
		return result
	}
	if l.SpawnAttempts > 0 {
		result.SpawnAttempts = l.SpawnAttempts
	}
	if l.SpawnBackoff > 0 {
		result.SpawnBackoff = l.SpawnBackoff
	}
	if l.ChunkSize > 0 {
		result.ChunkSize = l.ChunkSize
	}
	if l.QueueDepth > 0 {
		result.QueueDepth = l.QueueDepth
	}
	return result
}

// ProcessOptions are the arguments given to StartProcess.
type ProcessOptions struct {
	Group         *Group            // Group to join, nil if none
	Executable    string            // Absolute path to the executable
	Arguments     []string          // Arguments, not including the executable
	WorkingFolder string            // Working directory, empty to inherit
	Environment   map[string]string // Environment variables, nil to inherit
	Priority      Priority
	Flags         ProcessFlags
	Sandbox       *SandboxPolicy // nil for no restrictions
	Limits        *Limits        // nil for DefaultLimits
	Log           *logrus.Entry  // Diagnostics, nil for the standard logger
}
