package system

import (
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

// A strategy starts processes, platformStrategy is chosen per build target.
type strategy interface {
	spawn(r *spawnRequest) (processHandle, error)
}

// processHandle is a started child process with its pipes.
type processHandle interface {
	Pid() int
	stdin() io.WriteCloser
	stdout() io.Reader
	stderr() io.Reader // nil when output is merged
	// wait blocks until the process has exited and been reaped
	wait() (*os.ProcessState, error)
	kill() error
	// release closes all pipes, it is called after wait has returned
	release() error
}

type spawnRequest struct {
	executable    string
	arguments     []string
	workingFolder string
	environment   []string // nil to inherit
	priority      Priority
	flags         ProcessFlags
	sandbox       *SandboxPolicy
	limits        Limits
	account       *Group   // private accounting group
	groups        []*Group // groups to join, account first
	log           *logrus.Entry
}

func (r *spawnRequest) command() *exec.Cmd {
	cmd := exec.Command(r.executable, r.arguments...)
	cmd.Dir = r.workingFolder
	cmd.Env = r.environment
	return cmd
}

func (r *spawnRequest) commandLine() string {
	return commandLine(r.executable, r.arguments)
}

func commandLine(executable string, arguments []string) string {
	return shellquote.Join(append([]string{executable}, arguments...)...)
}

// joinGroups adds m to all groups. ErrNestingUnsupported is tolerated, the
// process remains covered by the group it already belongs to.
func joinGroups(groups []*Group, m Member, log *logrus.Entry) error {
	for _, g := range groups {
		err := g.AddProcess(m)
		if err == ErrNestingUnsupported {
			log.WithField("group", g.id).Debug("process is already in a group, nesting unsupported")
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// formatEnv renders env as sorted KEY=VALUE pairs, nil inherits the
// environment of the supervisor.
func formatEnv(env map[string]string) []string {
	if env == nil {
		return nil
	}
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}
