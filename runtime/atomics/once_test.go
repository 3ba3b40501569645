package atomics

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnce(t *testing.T) {
	t.Run("Do twice", func(t *testing.T) {
		var once Once
		count := 0
		assert.True(t, once.Do(func() { count++ }))
		assert.False(t, once.Do(func() { count++ }))
		assert.Equal(t, 1, count)
	})

	t.Run("concurrent Do and Wait", func(t *testing.T) {
		var once Once
		var count, winners int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				once.Wait()
				assert.EqualValues(t, 1, atomic.LoadInt32(&count))
			}()
			go func() {
				defer wg.Done()
				if once.Do(func() { atomic.AddInt32(&count, 1) }) {
					atomic.AddInt32(&winners, 1)
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, count)
		assert.EqualValues(t, 1, winners)
	})

	t.Run("Done", func(t *testing.T) {
		var once Once
		done := once.Done()
		select {
		case <-done:
			t.Fatal("Done() closed before Do()")
		default:
		}
		require.False(t, once.IsDone())

		once.Do(nil)
		<-done
		<-once.Done()
		assert.True(t, once.IsDone())
	})

	t.Run("resolves on panic", func(t *testing.T) {
		var once Once
		assert.Panics(t, func() {
			once.Do(func() { panic("boom") })
		})
		once.Wait()
		assert.False(t, once.Do(nil))
	})
}
