package ebb_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ebb-frp/ebb"
)

func TestRootSurfaceEndToEnd(t *testing.T) {
	g := ebb.NewGraph()

	var emit func(int)
	var label *ebb.Reactive[string]
	ebb.WithGraph(g, func() {
		var clicks *ebb.Event[int]
		clicks, emit = ebb.NewEvent[int]()
		total := ebb.Fold(clicks, 0, func(acc, n int) int { return acc + n })
		label = ebb.MapR(total, func(n int) string { return fmt.Sprintf("total: %d", n) })
	})

	var got []string
	ebb.Subscribe(label, func(s string) { got = append(got, s) })

	emit(1)
	emit(2)

	want := []string{"total: 0", "total: 1", "total: 3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if g.LiveNodes() == 0 {
		t.Error("graph did not record the root-surface constructions")
	}
}

func TestRootBatchCoalescesDeferredEffects(t *testing.T) {
	var mu sync.Mutex
	var calls []int

	ebb.Batch(func() {
		e, emit := ebb.NewEvent[int]()
		r := ebb.Stepper(e, 0)
		ebb.Effect(r, func(v int) {
			mu.Lock()
			calls = append(calls, v)
			mu.Unlock()
		})
		emit(1)
		emit(2)
		emit(3)
	})
	ebb.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != 3 {
		t.Errorf("expected one coalesced call with 3, got %v", calls)
	}
}
