// Package spawn provides the spawn command, which runs a command as a
// supervised child process.
package spawn

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
	"github.com/taskcluster/procsup/commands"
	"github.com/taskcluster/procsup/config"
	"github.com/taskcluster/procsup/runtime"
)

func init() {
	commands.Register("spawn", cmd{})
}

type cmd struct{}

var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func (cmd) Summary() string {
	return "Run a command under supervision"
}

func (cmd) Usage() string {
	return `
procsup spawn runs a command as a supervised child process, forwarding stdin
and streaming its output. On interrupt stdin is closed, and the command is
killed after the grace period or on a second interrupt. Reports exit code and
CPU time when the command exits.

usage:
  procsup spawn [options] [--] <executable> [<args>...]
  procsup spawn [options] --config <file>

options:
  -c --config <file>     Load the command and its options from a YAML file.
  -m --merge             Merge stderr into stdout.
  -k --kill-on-close     Kill all descendants when the command exits.
  -b --balance           Balance over NUMA nodes or processor groups.
  -d --dir <folder>      Working folder, defaults to the current folder.
  -p --priority <level>  One of idle, below-normal, normal, above-normal and
                         high [default: normal].
  -l --lines             Prefix each line of output with its stream.
  --grace <duration>     Time from interrupt until the command is killed
                         [default: 5s].
  --log-level <level>    Log level [default: warn].
  -h --help              Show this screen.
`
}

type options struct {
	config *config.Config
	lines  bool
	grace  time.Duration
}

func parseArguments(arguments map[string]interface{}) (*options, error) {
	o := &options{lines: arguments["--lines"].(bool)}
	var err error
	if o.grace, err = time.ParseDuration(arguments["--grace"].(string)); err != nil {
		return nil, errors.Wrap(err, "invalid --grace")
	}

	if file, ok := arguments["--config"].(string); ok {
		if o.config, err = config.LoadFromFile(file); err != nil {
			return nil, err
		}
		if o.config.LogLevel == "" {
			o.config.LogLevel = arguments["--log-level"].(string)
		}
		return o, nil
	}

	args, _ := arguments["<args>"].([]string)
	c := &config.Config{
		LogLevel:          arguments["--log-level"].(string),
		Command:           shellquote.Join(append([]string{arguments["<executable>"].(string)}, args...)...),
		MergeOutput:       arguments["--merge"].(bool),
		KillOnClose:       arguments["--kill-on-close"].(bool),
		BalanceProcessors: arguments["--balance"].(bool),
		Priority:          arguments["--priority"].(string),
	}
	if dir, ok := arguments["--dir"].(string); ok {
		c.WorkingFolder = dir
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o.config = c
	return o, nil
}

func (cmd) Execute(arguments map[string]interface{}) bool {
	o, err := parseArguments(arguments)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	logger, err := runtime.CreateLogger(o.config.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}

	var s supervisor
	stop := runtime.StopOnSignal(&s.tracker, interruptSignals...)
	defer stop()

	code, err := s.run(o, logger.WithField("cmd", "spawn"), os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		logger.WithError(err).Error("failed to run command")
		return false
	}
	return code == 0
}
