package config

import (
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/shlex"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/taskcluster/procsup/system"
)

// Config is the decoded configuration object.
type Config struct {
	LogLevel             string            `yaml:"logLevel"`
	Command              string            `yaml:"command"`
	WorkingFolder        string            `yaml:"workingFolder"`
	Environment          map[string]string `yaml:"environment"`
	MergeOutput          bool              `yaml:"mergeOutput"`
	KillOnClose          bool              `yaml:"killOnClose"`
	KillOnSupervisorExit bool              `yaml:"killOnSupervisorExit"`
	BalanceProcessors    bool              `yaml:"balanceProcessors"`
	Priority             string            `yaml:"priority"`
	Sandbox              *SandboxConfig    `yaml:"sandbox"`
	Limits               LimitsConfig      `yaml:"limits"`
}

// SandboxConfig maps to system.SandboxPolicy.
type SandboxConfig struct {
	MaxOpenFiles uint64 `yaml:"maxOpenFiles"`
	MaxMemory    uint64 `yaml:"maxMemory"`
}

// LimitsConfig maps to system.Limits, zero values select defaults.
type LimitsConfig struct {
	SpawnAttempts int    `yaml:"spawnAttempts"`
	SpawnBackoff  string `yaml:"spawnBackoff"` // duration like "50ms"
	ChunkSize     int    `yaml:"chunkSize"`
	QueueDepth    int    `yaml:"queueDepth"`
}

// Validate returns an error describing the first invalid property.
func (c *Config) Validate() error {
	if c.Command == "" {
		return errors.New("'command' is required")
	}
	args, err := shlex.Split(c.Command)
	if err != nil {
		return errors.Wrap(err, "invalid 'command'")
	}
	if len(args) == 0 {
		return errors.New("'command' is empty")
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return errors.Wrap(err, "invalid 'logLevel'")
		}
	}
	if c.Priority != "" {
		if _, ok := system.ParsePriority(c.Priority); !ok {
			return errors.Errorf("invalid 'priority': %s", c.Priority)
		}
	}
	if c.Limits.SpawnBackoff != "" {
		if _, err := time.ParseDuration(c.Limits.SpawnBackoff); err != nil {
			return errors.Wrap(err, "invalid 'limits.spawnBackoff'")
		}
	}
	if c.Limits.SpawnAttempts < 0 || c.Limits.ChunkSize < 0 || c.Limits.QueueDepth < 0 {
		return errors.New("'limits' must not be negative")
	}
	return nil
}

// ProcessOptions returns options for system.StartProcess, resolving the
// executable through PATH if it is not a path.
func (c *Config) ProcessOptions(group *system.Group, log *logrus.Entry) (system.ProcessOptions, error) {
	if err := c.Validate(); err != nil {
		return system.ProcessOptions{}, err
	}
	args, _ := shlex.Split(c.Command)
	exe, err := exec.LookPath(args[0])
	if err != nil {
		return system.ProcessOptions{}, errors.Wrapf(err, "unable to find executable %s", args[0])
	}
	if exe, err = filepath.Abs(exe); err != nil {
		return system.ProcessOptions{}, errors.Wrap(err, "unable to resolve executable")
	}

	var flags system.ProcessFlags
	if c.MergeOutput {
		flags |= system.MergeOutput
	}
	if c.KillOnSupervisorExit {
		flags |= system.KillOnSupervisorExit
	}
	if c.BalanceProcessors {
		flags |= system.BalanceProcessors
	}
	priority := system.PriorityNormal
	if c.Priority != "" {
		priority, _ = system.ParsePriority(c.Priority)
	}
	var sandbox *system.SandboxPolicy
	if c.Sandbox != nil {
		sandbox = &system.SandboxPolicy{
			MaxOpenFiles: c.Sandbox.MaxOpenFiles,
			MaxMemory:    c.Sandbox.MaxMemory,
		}
	}
	limits := system.Limits{
		SpawnAttempts: c.Limits.SpawnAttempts,
		ChunkSize:     c.Limits.ChunkSize,
		QueueDepth:    c.Limits.QueueDepth,
	}
	if c.Limits.SpawnBackoff != "" {
		limits.SpawnBackoff, _ = time.ParseDuration(c.Limits.SpawnBackoff)
	}

	return system.ProcessOptions{
		Group:         group,
		Executable:    exe,
		Arguments:     args[1:],
		WorkingFolder: c.WorkingFolder,
		Environment:   c.Environment,
		Priority:      priority,
		Flags:         flags,
		Sandbox:       sandbox,
		Limits:        &limits,
		Log:           log,
	}, nil
}
