package system

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

const (
	jobObjectBasicAccountingInformation = 1
	jobObjectGroupInformation           = 11

	processTerminate               = 0x0001
	processSetQuota                = 0x0100
	processSuspendResume           = 0x0800
	processQueryLimitedInformation = 0x1000
)

// JOBOBJECT_BASIC_ACCOUNTING_INFORMATION
type jobAccountingInformation struct {
	TotalUserTime             int64
	TotalKernelTime           int64
	ThisPeriodTotalUserTime   int64
	ThisPeriodTotalKernelTime int64
	TotalPageFaultCount       uint32
	TotalProcesses            uint32
	ActiveProcesses           uint32
	TotalTerminatedProcesses  uint32
}

// jobGroup is a job object, processes spawned by members join it
// automatically.
type jobGroup struct {
	job         windows.Handle
	killOnClose bool
}

func newGroupPrimitive(killOnClose bool) (groupPrimitive, error) {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "CreateJobObject failed")
	}
	g := &jobGroup{job: job, killOnClose: killOnClose}
	if killOnClose {
		if err := g.setLimits(0, 0); err != nil {
			windows.CloseHandle(job)
			return nil, err
		}
	}
	return g, nil
}

// setLimits replaces the extended limits of the job, kill on close is kept.
func (g *jobGroup) setLimits(flags uint32, processMemory uintptr) error {
	var info windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION
	if g.killOnClose {
		flags |= windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE
	}
	info.BasicLimitInformation.LimitFlags = flags
	info.ProcessMemoryLimit = processMemory
	_, err := windows.SetInformationJobObject(
		g.job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	)
	return errors.Wrap(err, "failed to set job object limits")
}

func (g *jobGroup) setMemoryLimit(bytes uint64) error {
	return g.setLimits(windows.JOB_OBJECT_LIMIT_PROCESS_MEMORY, uintptr(bytes))
}

func (g *jobGroup) setProcessorGroup(group uint16) error {
	_, err := windows.SetInformationJobObject(
		g.job,
		jobObjectGroupInformation,
		uintptr(unsafe.Pointer(&group)),
		uint32(unsafe.Sizeof(group)),
	)
	return errors.Wrapf(err, "failed to assign processor group %d", group)
}

func (g *jobGroup) add(pid int) error {
	h, err := windows.OpenProcess(processSetQuota|processTerminate, false, uint32(pid))
	if err != nil {
		return errors.Wrapf(err, "failed to open process %d", pid)
	}
	defer windows.CloseHandle(h)

	err = windows.AssignProcessToJobObject(g.job, h)
	if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
		return ErrNestingUnsupported
	}
	return errors.Wrapf(err, "failed to assign process %d to job object", pid)
}

// Job accounting includes exited members, nothing to record.
func (g *jobGroup) retire(int, time.Duration) {}

func (g *jobGroup) cpuTime() time.Duration {
	var info jobAccountingInformation
	err := windows.QueryInformationJobObject(
		g.job,
		jobObjectBasicAccountingInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
		nil,
	)
	if err != nil {
		debug("QueryInformationJobObject failed: %s", err)
		return 0
	}
	// Reported in 100ns ticks
	return time.Duration(info.TotalUserTime+info.TotalKernelTime) * 100
}

func (g *jobGroup) terminate() error {
	return errors.Wrap(windows.TerminateJobObject(g.job, 1), "TerminateJobObject failed")
}

// Closing the last handle to a kill on close job terminates its processes.
func (g *jobGroup) close() error {
	return errors.Wrap(windows.CloseHandle(g.job), "failed to close job object")
}
