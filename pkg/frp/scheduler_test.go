package frp

import (
	"sync"
	"testing"
	"time"
)

func TestEffectPostFlushCoalescesToLatest(t *testing.T) {
	var mu sync.Mutex
	var calls []int

	Batch(func() {
		e, emit := NewEvent[int]()
		r := NewReactive(0, e)
		EffectPostFlush(r, func(v int) {
			mu.Lock()
			calls = append(calls, v)
			mu.Unlock()
		})

		emit(1)
		emit(2)
		emit(3)
	})
	Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != 3 {
		t.Errorf("expected exactly one call with 3, got %v", calls)
	}
}

func TestEffectDeliversInitialValueDeferred(t *testing.T) {
	var mu sync.Mutex
	var calls []int

	r := Of(42)
	Effect(r, func(v int) {
		mu.Lock()
		calls = append(calls, v)
		mu.Unlock()
	})

	mu.Lock()
	immediate := len(calls)
	mu.Unlock()
	if immediate != 0 {
		t.Error("deferred effect ran synchronously at registration")
	}

	Wait()
	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != 42 {
		t.Errorf("expected one deferred call with 42, got %v", calls)
	}
}

func TestBatchKeepsImmediateSemantics(t *testing.T) {
	e, emit := NewEvent[int]()
	r := NewReactive(0, e)

	var immediate []int
	Subscribe(r, func(v int) { immediate = append(immediate, v) })

	Batch(func() {
		emit(1)
		emit(2)
	})

	// Immediate subscribers see every emission synchronously, batched or not.
	if len(immediate) != 3 || immediate[2] != 2 {
		t.Errorf("immediate subscriber saw %v", immediate)
	}
}

func TestNestedBatchFlushesOnceAtOutermostExit(t *testing.T) {
	var mu sync.Mutex
	var calls []int

	Batch(func() {
		e, emit := NewEvent[int]()
		r := NewReactive(0, e)
		EffectPostFlush(r, func(v int) {
			mu.Lock()
			calls = append(calls, v)
			mu.Unlock()
		})

		Batch(func() {
			emit(1)
		})
		// Inner batch exit must not flush: still inside the outer batch.
		mu.Lock()
		n := len(calls)
		mu.Unlock()
		if n != 0 {
			t.Error("flushed before outermost batch exit")
		}
		emit(2)
	})
	Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != 2 {
		t.Errorf("expected one call with 2, got %v", calls)
	}
}

func TestEffectEDeliversLatestEmissionPerFlush(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	Batch(func() {
		e, emit := NewEvent[string]()
		EffectE(e, func(v string) {
			mu.Lock()
			calls = append(calls, v)
			mu.Unlock()
		})
		emit("a")
		emit("b")
	})
	Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != "b" {
		t.Errorf("expected one call with b, got %v", calls)
	}
}

func TestScheduleDuringFlushStaysInSameFlush(t *testing.T) {
	s := NewScheduler()

	flushes := 0
	s.SetFlushObserver(func(callbacks int, _ time.Duration) { flushes++ })

	ran := make([]string, 0, 2)
	var mu sync.Mutex
	s.Schedule(func() {
		mu.Lock()
		ran = append(ran, "outer")
		mu.Unlock()
		s.Schedule(func() {
			mu.Lock()
			ran = append(ran, "inner")
			mu.Unlock()
		})
	})
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 2 || ran[0] != "outer" || ran[1] != "inner" {
		t.Errorf("ran %v", ran)
	}
	if flushes != 1 {
		t.Errorf("expected a single flush, got %d", flushes)
	}
}

func TestScheduleUpdateCoalescesIntoPendingFlush(t *testing.T) {
	s := NewScheduler()

	var mu sync.Mutex
	count := 0
	block := make(chan struct{})

	s.Schedule(func() { <-block })
	s.Schedule(func() { mu.Lock(); count++; mu.Unlock() })
	s.Schedule(func() { mu.Lock(); count++; mu.Unlock() })
	close(block)
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Errorf("expected both callbacks to run, got %d", count)
	}
}

func TestCustomSchedulerFlushesAtBatchExit(t *testing.T) {
	s := NewScheduler()

	var mu sync.Mutex
	var ran []int
	Batch(func() {
		s.Schedule(func() {
			mu.Lock()
			ran = append(ran, 1)
			mu.Unlock()
		})
		s.Schedule(func() {
			mu.Lock()
			ran = append(ran, 2)
			mu.Unlock()
		})

		mu.Lock()
		n := len(ran)
		mu.Unlock()
		if n != 0 {
			t.Error("custom scheduler flushed inside the batch")
		}
	})

	// The outermost batch exit kicks every scheduler that queued work, not
	// just the default one, so Wait must not block here.
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 2 || ran[0] != 1 || ran[1] != 2 {
		t.Errorf("ran %v", ran)
	}
}

func TestWaitIdleIsImmediate(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on an idle scheduler")
	}
}
