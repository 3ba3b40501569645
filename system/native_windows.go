package system

import (
	"os/exec"
	"sync/atomic"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

const createSuspended = 0x00000004

var (
	modntdll            = windows.NewLazySystemDLL("ntdll.dll")
	procNtResumeProcess = modntdll.NewProc("NtResumeProcess")

	modkernel32                      = windows.NewLazySystemDLL("kernel32.dll")
	procGetActiveProcessorGroupCount = modkernel32.NewProc("GetActiveProcessorGroupCount")

	nextProcessorGroup uint32
)

var priorityClasses = map[Priority]uint32{
	PriorityIdle:        windows.IDLE_PRIORITY_CLASS,
	PriorityBelowNormal: windows.BELOW_NORMAL_PRIORITY_CLASS,
	PriorityNormal:      windows.NORMAL_PRIORITY_CLASS,
	PriorityAboveNormal: windows.ABOVE_NORMAL_PRIORITY_CLASS,
	PriorityHigh:        windows.HIGH_PRIORITY_CLASS,
}

func checkSandbox(policy *SandboxPolicy) error {
	if policy != nil && (policy.Owner != nil || policy.MaxOpenFiles > 0) {
		return ErrSandboxUnsupported
	}
	return nil
}

func sysProcAttr(r *spawnRequest) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: createSuspended | priorityClasses[r.priority],
	}
}

func startCommand(cmd *exec.Cmd) error {
	return cmd.Start()
}

func processorGroupCount() uint32 {
	if procGetActiveProcessorGroupCount.Find() != nil {
		return 1
	}
	n, _, _ := procGetActiveProcessorGroupCount.Call()
	return uint32(n)
}

// setupNative configures the job objects of a suspended child and resumes it,
// so nothing the child spawns can escape its jobs.
func setupNative(r *spawnRequest, h *nativeHandle) error {
	if job, ok := r.account.primitive.(*jobGroup); ok {
		if r.sandbox != nil && r.sandbox.MaxMemory > 0 {
			if err := job.setMemoryLimit(r.sandbox.MaxMemory); err != nil {
				return err
			}
		}
		if r.flags.Has(BalanceProcessors) {
			if n := processorGroupCount(); n > 1 {
				group := uint16((atomic.AddUint32(&nextProcessorGroup, 1) - 1) % n)
				if err := job.setProcessorGroup(group); err != nil {
					r.log.WithError(err).Warn("failed to balance process over processor groups")
				}
			}
		}
	}
	if err := joinGroups(r.groups, h, r.log); err != nil {
		return err
	}

	process, err := windows.OpenProcess(processSuspendResume|processQueryLimitedInformation, false, uint32(h.Pid()))
	if err != nil {
		return errors.Wrapf(err, "failed to open process %d", h.Pid())
	}
	defer windows.CloseHandle(process)
	if status, _, _ := procNtResumeProcess.Call(uintptr(process)); status != 0 {
		return errors.Errorf("NtResumeProcess failed with status 0x%x", status)
	}
	return nil
}
