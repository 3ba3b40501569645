package system

import (
	"os"
	"os/exec"
	goruntime "runtime"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var niceValues = map[Priority]int{
	PriorityIdle:        19,
	PriorityBelowNormal: 10,
	PriorityNormal:      0,
	PriorityAboveNormal: -5,
	PriorityHigh:        -10,
}

func checkSandbox(policy *SandboxPolicy) error {
	return nil
}

func sysProcAttr(r *spawnRequest) *syscall.SysProcAttr {
	attr := &syscall.SysProcAttr{
		// Own process group from fork, descendants inherit it
		Setpgid: true,
	}
	if r.flags.Has(KillOnSupervisorExit) {
		attr.Pdeathsig = syscall.SIGKILL
	}
	if r.sandbox != nil && r.sandbox.Owner != nil {
		owner := r.sandbox.Owner
		// Switching to the current user needs privileges we may not have
		if int(owner.UID) != os.Getuid() || int(owner.GID) != os.Getgid() {
			attr.Credential = &syscall.Credential{Uid: owner.UID, Gid: owner.GID}
		}
	}
	return attr
}

func startCommand(cmd *exec.Cmd) error {
	if cmd.SysProcAttr.Pdeathsig != 0 {
		// Pdeathsig fires when the forking thread exits, not the process
		goruntime.LockOSThread()
		defer goruntime.UnlockOSThread()
	}
	return cmd.Start()
}

// setupNative runs after start: the child already leads its own process
// group, so joining groups here does not race with its descendants.
func setupNative(r *spawnRequest, h *nativeHandle) error {
	if err := joinGroups(r.groups, h, r.log); err != nil {
		return err
	}
	pid := h.Pid()
	if r.priority != PriorityNormal {
		if err := unix.Setpriority(unix.PRIO_PROCESS, pid, niceValues[r.priority]); err != nil {
			r.log.WithError(err).Warn("failed to set process priority")
		}
	}
	if r.flags.Has(BalanceProcessors) {
		if set, ok := nextNodeAffinity(); ok {
			if err := unix.SchedSetaffinity(pid, set); err != nil {
				r.log.WithError(err).Warn("failed to set processor affinity")
			}
		}
	}
	return applyRlimits(pid, r.sandbox)
}

func applyRlimits(pid int, policy *SandboxPolicy) error {
	if policy == nil {
		return nil
	}
	if policy.MaxOpenFiles > 0 {
		limit := unix.Rlimit{Cur: policy.MaxOpenFiles, Max: policy.MaxOpenFiles}
		if err := unix.Prlimit(pid, unix.RLIMIT_NOFILE, &limit, nil); err != nil {
			return errors.Wrap(err, "failed to limit open files")
		}
	}
	if policy.MaxMemory > 0 {
		limit := unix.Rlimit{Cur: policy.MaxMemory, Max: policy.MaxMemory}
		if err := unix.Prlimit(pid, unix.RLIMIT_AS, &limit, nil); err != nil {
			return errors.Wrap(err, "failed to limit memory")
		}
	}
	return nil
}
