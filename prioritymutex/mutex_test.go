package prioritymutex

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMutualExclusion(t *testing.T) {
	m := New()
	var active int
	var mu sync.Mutex
	var maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				m.LockHigh()
				defer m.UnlockHigh()
			} else {
				m.LockLow()
				defer m.UnlockLow()
			}

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, maxActive)
}

func TestHighPriorityPreemptsWaitingLow(t *testing.T) {
	m := New()
	m.LockLow()

	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	var wg sync.WaitGroup

	// Queue a low-priority waiter first.
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.LockLow()
		record("low")
		m.UnlockLow()
	}()
	time.Sleep(20 * time.Millisecond)

	// Now queue a high-priority waiter; it must win the race once the
	// current holder releases, ahead of the already-waiting low.
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.LockHigh()
		record("high")
		m.UnlockHigh()
	}()
	time.Sleep(20 * time.Millisecond)

	m.UnlockLow()
	wg.Wait()

	require.Equal(t, []string{"high", "low"}, order)
}
