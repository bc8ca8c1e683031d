package frp

// Fix builds a self-referential reactive. fn receives a forward reference
// to the reactive under construction and must use it only for wiring into
// combinators that sample it later (WhenR, Snapshot, Tag, ...); reading it
// before fn returns panics with ErrFixForwardRead. fn returns the event
// that will drive the reactive; once it returns, the forward reference is
// back-filled with stepper semantics over that event, starting at initial,
// and becomes live for every closure that captured it.
func Fix[T any](initial T, fn func(*Reactive[T]) *Event[T]) *Reactive[T] {
	fw := newForwardRef[T]()
	ev := fn(fw)
	fw.backfill(initial, ev)
	return fw
}

// FixWith generalizes Fix: the builder also returns an auxiliary artifact
// assembled during wiring, handed back alongside the reactive.
func FixWith[T, A any](initial T, builder func(*Reactive[T]) (*Event[T], A)) (*Reactive[T], A) {
	fw := newForwardRef[T]()
	ev, aux := builder(fw)
	fw.backfill(initial, ev)
	return fw, aux
}

// newForwardRef creates the two-phase indirection cell: a real *Reactive
// whose state starts empty and is filled in exactly once by backfill.
func newForwardRef[T any]() *Reactive[T] {
	fw := &Reactive[T]{id: nextID()}
	fw.graph = trackNode(fw, "fix", func() { CleanupR(fw) })
	return fw
}

// backfill makes a forward reference live: it installs the value state and
// subscribes the driving event, whose emissions become the current value.
func (r *Reactive[T]) backfill(initial T, ev *Event[T]) {
	r.mu.Lock()
	if r.st != nil {
		r.mu.Unlock()
		return
	}
	r.st = &reactiveState[T]{value: initial, changes: newFuture[*Event[T]]()}
	r.mu.Unlock()

	if ev != nil {
		edge(r.graph, ev, r)
		r.onDispose(ev.subscribe(r.updateValue))
	}
}
