//go:build !windows

package system

import (
	"syscall"

	"github.com/pkg/errors"
)

// Resource exhaustion and a freshly written executable still open for
// writing are worth another attempt.
func isTransientSpawnError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.ETXTBSY)
}
