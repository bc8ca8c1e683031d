package frp

import "sync"

// Event is a discrete push-based notification channel with no stored value.
// Emitting notifies every currently registered subscriber exactly once, in
// subscription order, synchronously. Subscribers added during an emission
// are not visited until the next emission: the subscriber list is
// snapshotted before iterating.
//
// Events are created with NewEvent or by the combinators in this package.
// After Cleanup, emissions and notifications are silent no-ops.
type Event[T any] struct {
	id    uint64
	graph *Graph

	mu        sync.Mutex
	subs      []*eventSub[T]
	disposers []func()
	disposed  bool
}

// eventSub pairs a subscriber callback with an identity for ordered removal.
type eventSub[T any] struct {
	id uint64
	fn func(T)
}

// NewEvent creates a discrete event stream and its emitter.
// emit(v) synchronously notifies every current subscriber with v.
// A panicking subscriber is recovered and logged; remaining subscribers
// are still notified.
func NewEvent[T any]() (*Event[T], func(T)) {
	return newEvent[T]("event")
}

// newEvent is the internal constructor shared by combinators; label names
// the constructing operation for graph inspection.
func newEvent[T any](label string) (*Event[T], func(T)) {
	e := &Event[T]{id: nextID()}
	e.graph = trackNode(e, label, func() { Cleanup(e) })
	return e, e.emit
}

// Never returns an event that never emits. Subscribing to it is legal and
// has no effect beyond bookkeeping.
func Never[T any]() *Event[T] {
	e, _ := newEvent[T]("never")
	return e
}

// NodeID implements Node.
func (e *Event[T]) NodeID() uint64 { return e.id }

// Kind implements Node.
func (e *Event[T]) Kind() NodeKind { return KindEvent }

// emit delivers v to every subscriber registered at the time of the call.
// Re-entrant emission from inside a subscriber is legal; the snapshot taken
// here means mid-emission subscriptions are deferred to the next emission.
func (e *Event[T]) emit(v T) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	subs := make([]*eventSub[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	if e.graph != nil {
		e.graph.recordEmission(e.id)
	}

	for _, sub := range subs {
		s := sub
		safeNotify(e.id, func() { s.fn(v) })
	}
}

// subscribe registers fn and returns a removal function.
// Removal preserves the order of the remaining subscribers; emission order
// is a guarantee of this type.
func (e *Event[T]) subscribe(fn func(T)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return func() {}
	}

	sub := &eventSub[T]{id: nextID(), fn: fn}
	e.subs = append(e.subs, sub)

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == sub.id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeE registers fn to be called synchronously with every emission of
// e, in subscription order. The returned function removes the subscription.
func SubscribeE[T any](e *Event[T], fn func(T)) func() {
	unsub := sync.OnceFunc(e.subscribe(fn))
	if sc := currentScope(); sc != nil {
		sc.OnCleanup(unsub)
	}
	return unsub
}

// EffectE registers a deferred consumer of e: fn runs at most once per
// scheduler flush, carrying only the latest emission observed since the
// previous flush. Earlier emissions within the same flush window are
// intentionally dropped. The returned function removes the subscription.
func EffectE[T any](e *Event[T], fn func(T)) func() {
	d := &deferred[T]{fn: fn}
	return SubscribeE(e, d.push)
}

// OnCleanup registers a disposer to run when e is cleaned up.
// If e is already cleaned up, fn runs immediately. Each disposer runs at
// most once.
func OnCleanup[T any](e *Event[T], fn func()) {
	once := sync.OnceFunc(fn)

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		once()
		return
	}
	e.disposers = append(e.disposers, once)
	e.mu.Unlock()

	if sc := currentScope(); sc != nil {
		sc.OnCleanup(once)
	}
}

// onDispose appends an internal disposer without scope bookkeeping.
// Used by combinators to tie a derived event's upstream subscription to its
// own lifetime.
func (e *Event[T]) onDispose(fn func()) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		fn()
		return
	}
	e.disposers = append(e.disposers, fn)
	e.mu.Unlock()
}

// Cleanup runs and clears all registered disposers and empties the
// subscriber list. After cleanup, emissions on e are silently ignored.
// Safe to call more than once; repeated calls are no-ops.
func Cleanup[T any](e *Event[T]) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	disposers := e.disposers
	e.disposers = nil
	e.subs = nil
	e.mu.Unlock()

	for i := len(disposers) - 1; i >= 0; i-- {
		disposers[i]()
	}

	if e.graph != nil {
		e.graph.removeNode(e.id)
	}
}
