package atomics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBool(t *testing.T) {
	var b Bool
	assert.False(t, b.Get())
	b.Set(true)
	assert.True(t, b.Get())
	assert.True(t, b.Swap(false))
	assert.False(t, b.Swap(false))

	b = NewBool(true)
	assert.True(t, b.Get())
}

func TestBoolSwapConcurrent(t *testing.T) {
	var b Bool
	var wg sync.WaitGroup
	winners := make(chan struct{}, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !b.Swap(true) {
				winners <- struct{}{}
			}
		}()
	}
	wg.Wait()
	assert.Len(t, winners, 1)
}
