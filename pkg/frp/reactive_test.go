package frp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOfIsConstant(t *testing.T) {
	r := Of(5)
	if r.Get() != 5 || r.Peek() != 5 || Sample(r) != 5 {
		t.Error("constant reads disagree")
	}
}

func TestNewReactiveFollowsBackingEvent(t *testing.T) {
	e, emit := NewEvent[int]()
	r := NewReactive(0, e)

	emit(1)
	emit(2)
	if r.Get() != 2 {
		t.Errorf("expected 2, got %d", r.Get())
	}
}

func TestSubscribeImmediateThenPerChange(t *testing.T) {
	e, emit := NewEvent[int]()
	r := NewReactive(0, e)

	var got []int
	Subscribe(r, func(v int) { got = append(got, v) })

	emit(1)
	emit(2)
	emit(3)

	// Immediate call with current value, then one call per change, no
	// coalescing.
	if diff := cmp.Diff([]int{0, 1, 2, 3}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSubscribeUnsubscribeStopsDelivery(t *testing.T) {
	e, emit := NewEvent[int]()
	r := NewReactive(0, e)

	calls := 0
	unsub := Subscribe(r, func(int) { calls++ })
	emit(1)
	unsub()
	emit(2)

	if calls != 2 { // initial + first change
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestChangesIsLazyAndStable(t *testing.T) {
	r := Of(1)
	ch := r.Changes()
	if ch == nil {
		t.Fatal("nil changes")
	}
	if r.Changes() != ch {
		t.Error("changes must be materialized exactly once")
	}

	e, emit := NewEvent[int]()
	backed := NewReactive(0, e)
	if backed.Changes() != e {
		t.Error("event-backed reactive must expose its backing event")
	}

	var got []int
	SubscribeE(backed.Changes(), func(v int) { got = append(got, v) })
	emit(4)
	if len(got) != 1 || got[0] != 4 {
		t.Errorf("changes did not carry update: %v", got)
	}
}

func TestDerivedChangesEmitsMappedValues(t *testing.T) {
	e, emit := NewEvent[int]()
	r := NewReactive(1, e)
	d := MapR(r, func(n int) int { return n * 10 })

	var got []int
	SubscribeE(d.Changes(), func(v int) { got = append(got, v) })

	emit(2)
	emit(3)
	if diff := cmp.Diff([]int{20, 30}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMapRFusionSingleHop(t *testing.T) {
	e, emit := NewEvent[int]()
	root := NewReactive(0, e)

	r := root
	for i := 0; i < 200; i++ {
		r = MapR(r, func(n int) int { return n + 1 })
	}

	// Structurally one hop: the deepest node is fused straight to the root.
	src, ok := DerivationSource(r)
	if !ok {
		t.Fatal("deep map is not a derivation")
	}
	if src != root.NodeID() {
		t.Errorf("fused to node %d, expected root %d", src, root.NodeID())
	}

	if r.Get() != 200 {
		t.Errorf("pull through fused chain: expected 200, got %d", r.Get())
	}
	emit(10)
	if r.Get() != 210 {
		t.Errorf("after emission: expected 210, got %d", r.Get())
	}

	var got []int
	Subscribe(r, func(v int) { got = append(got, v) })
	emit(20)
	if diff := cmp.Diff([]int{210, 220}, got); diff != "" {
		t.Errorf("push through fused chain (-want +got):\n%s", diff)
	}
}

func TestMapRFusionRecordedInGraphArena(t *testing.T) {
	g := NewGraph()
	WithGraph(g, func() {
		root := Of(1)
		a := MapR(root, func(n int) int { return n + 1 })
		b := MapR(a, func(n int) int { return n * 2 })

		if src, ok := g.Derivation(a.NodeID()); !ok || src != root.NodeID() {
			t.Errorf("first hop: got (%d,%v), want root %d", src, ok, root.NodeID())
		}
		if src, ok := g.Derivation(b.NodeID()); !ok || src != root.NodeID() {
			t.Errorf("second hop must collapse to root: got (%d,%v), want %d", src, ok, root.NodeID())
		}
		if _, ok := g.Derivation(root.NodeID()); ok {
			t.Error("root must not carry a derivation record")
		}
	})
}

func TestApRecomputesOnEitherInput(t *testing.T) {
	ve, emitV := NewEvent[int]()
	fe, emitF := NewEvent[func(int) int]()
	v := NewReactive(1, ve)
	f := NewReactive(func(n int) int { return n + 1 }, fe)

	r := Ap(v, f)
	if r.Get() != 2 {
		t.Fatalf("initial: %d", r.Get())
	}

	emitV(10)
	if r.Get() != 11 {
		t.Errorf("after value change: %d", r.Get())
	}
	emitF(func(n int) int { return n * 3 })
	if r.Get() != 30 {
		t.Errorf("after function change: %d", r.Get())
	}
}

func TestChainSwitchesInnerWithoutLeaks(t *testing.T) {
	outerE, emitOuter := NewEvent[int]()
	outer := NewReactive(0, outerE)

	innerAE, emitA := NewEvent[string]()
	innerA := NewReactive("a0", innerAE)
	innerBE, emitB := NewEvent[string]()
	innerB := NewReactive("b0", innerBE)

	r := Chain(outer, func(n int) *Reactive[string] {
		if n == 0 {
			return innerA
		}
		return innerB
	})

	var got []string
	Subscribe(r, func(v string) { got = append(got, v) })

	emitA("a1")
	emitOuter(1) // switch to innerB
	emitA("a2")  // stale inner: must not be delivered
	emitB("b1")

	want := []string{"a0", "a1", "b0", "b1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCleanupRStopsNotificationsAndIsIdempotent(t *testing.T) {
	e, emit := NewEvent[int]()
	r := NewReactive(0, e)

	calls := 0
	Subscribe(r, func(int) { calls++ })

	disposed := 0
	OnCleanupR(r, func() { disposed++ })

	CleanupR(r)
	CleanupR(r)

	emit(1)
	if calls != 1 { // only the immediate call at subscribe time
		t.Errorf("notified after cleanup: %d calls", calls)
	}
	if disposed != 1 {
		t.Errorf("disposer ran %d times", disposed)
	}
	if r.Get() != 0 {
		t.Errorf("value drifted after cleanup: %d", r.Get())
	}
}

func TestCleanupRCapturesDerivedValue(t *testing.T) {
	e, emit := NewEvent[int]()
	root := NewReactive(1, e)
	d := MapR(root, func(n int) int { return n * 10 })

	emit(5)
	CleanupR(d)
	emit(7) // root keeps moving; d is frozen

	if d.Get() != 50 {
		t.Errorf("expected frozen 50, got %d", d.Get())
	}
}
