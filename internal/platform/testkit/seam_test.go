package testkit

import (
	"sync"
	"testing"
	"time"
)

var (
	nowFn     = time.Now
	pageLimit = 100
	dispatch  = func(delay time.Duration) string { return "scheduled" }
)

func TestSwap_ClockRestoredAfterSubtest(t *testing.T) {
	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &nowFn, func() time.Time { return fixed })
		if !nowFn().Equal(fixed) {
			t.Fatalf("clock not swapped")
		}
	})
	if nowFn().Equal(fixed) {
		t.Fatalf("clock not restored")
	}
}

func TestSwap_ValuesAndFuncs(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		Swap(t, &pageLimit, 5)
		if pageLimit != 5 {
			t.Fatalf("pageLimit = %d", pageLimit)
		}
	})
	t.Run("func", func(t *testing.T) {
		Swap(t, &dispatch, func(time.Duration) string { return "immediate" })
		if got := dispatch(time.Minute); got != "immediate" {
			t.Fatalf("dispatch = %q", got)
		}
	})
	if pageLimit != 100 || dispatch(0) != "scheduled" {
		t.Fatalf("seams not restored: %d %q", pageLimit, dispatch(0))
	}
}

func TestSwap_NestedRestoresInReverse(t *testing.T) {
	t.Run("outer", func(t *testing.T) {
		Swap(t, &pageLimit, 1)
		t.Run("inner", func(t *testing.T) {
			Swap(t, &pageLimit, 2)
			if pageLimit != 2 {
				t.Fatalf("inner = %d", pageLimit)
			}
		})
		if pageLimit != 1 {
			t.Fatalf("outer after inner = %d", pageLimit)
		}
	})
	if pageLimit != 100 {
		t.Fatalf("final = %d", pageLimit)
	}
}

func TestSerial_ExcludesConcurrentHolders(t *testing.T) {
	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.Run("holder", func(t *testing.T) {
				Serial(t)
				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("Serial let %d tests in at once", maxSeen)
	}
}
