package system

import (
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// killProcessTree kills pid and all of its descendants. Processes started by
// the native strategy are covered by job objects, this serves the portable
// strategy.
func killProcessTree(pid int) error {
	system, err := windows.GetSystemDirectory()
	if err != nil {
		system = `c:\Windows\system32`
	}
	// See https://ss64.com/nt/taskkill.html
	err = exec.Command(
		filepath.Join(system, "taskkill.exe"),
		"/F", "/T", "/PID", strconv.Itoa(pid),
	).Run()
	return errors.Wrap(err, "failed to kill process tree")
}
