package system

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retrySpawn calls start until it succeeds, fails with an error that is not
// transient, or Limits.SpawnAttempts is exhausted.
func retrySpawn(r *spawnRequest, start func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.limits.SpawnBackoff
	b.MaxElapsedTime = 0
	retries := uint64(0)
	if r.limits.SpawnAttempts > 1 {
		retries = uint64(r.limits.SpawnAttempts - 1)
	}

	return backoff.RetryNotify(func() error {
		err := start()
		if err != nil && !isTransientSpawnError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithMaxRetries(b, retries), func(err error, delay time.Duration) {
		r.log.WithError(err).Warnf("transient failure starting process, retrying in %s", delay)
	})
}
