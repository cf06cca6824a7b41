package syncval

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCell_LoadReturnsInitial(t *testing.T) {
	c := New(5 * time.Second)
	require.Equal(t, 5*time.Second, c.Load())
}

func TestCell_StoreUpdatesLoad(t *testing.T) {
	c := New(time.Second)
	c.Store(2 * time.Second)
	require.Equal(t, 2*time.Second, c.Load())
}

func TestCell_ConcurrentStoreLoadDoesNotRace(t *testing.T) {
	c := New(time.Millisecond)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Store(time.Duration(n) * time.Millisecond)
		}(i)
		go func() {
			defer wg.Done()
			_ = c.Load()
		}()
	}
	wg.Wait()
}
