package system

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// Virus scanners and indexers briefly lock freshly written executables.
func isTransientSpawnError(err error) bool {
	return errors.Is(err, windows.ERROR_ACCESS_DENIED)
}
