package frp

import "sync"

// Reactive is a continuous value with memory. Its current value is updated
// by an optional backing event, by the combinators that constructed it, or
// by a fused map derivation pulled from another reactive.
//
// Reads are always consistent with the latest observed update. Subscribe
// delivers the current value immediately and then every subsequent value
// synchronously; Effect and EffectPostFlush deliver at most one coalesced
// call per scheduler flush.
type Reactive[T any] struct {
	id    uint64
	graph *Graph

	mu sync.Mutex
	// st is nil only for a Fix forward reference that has not been
	// back-filled yet. Reading through it panics with ErrFixForwardRead.
	st *reactiveState[T]
}

type reactiveState[T any] struct {
	value T

	// backing is the external update source passed to NewReactive, or the
	// internal stepper event. Its emissions flow through updateValue.
	backing *Event[T]

	// changes lazily materializes the Changes() event exactly once.
	changes *Future[*Event[T]]

	// emitChanges feeds the materialized changes event when it is internal
	// (constants and derived nodes). nil when changes is the backing event.
	emitChanges func(T)

	subs      []*reactiveSub[T]
	disposers []func()
	disposed  bool

	// deriv marks this node as a fused transform of a root source.
	deriv *derivation
}

type reactiveSub[T any] struct {
	id uint64
	fn func(T)
}

// derivation is the explicit one-hop fusion record: a derived node stores
// its ultimate non-derived source and a single composed function, so a map
// chain of any length costs one subscription and one call per pull.
type derivation struct {
	source   reactiveCore
	fn       func(any) any
	attached bool
}

// reactiveCore is the type-erased view of a Reactive used as a fusion
// source.
type reactiveCore interface {
	Node
	peekAny() any
	watchAny(fn func(any)) func()
}

// Of returns a constant reactive with no backing event.
func Of[T any](v T) *Reactive[T] {
	return newRootReactive(v, "of")
}

// NewReactive returns a reactive holding v, optionally driven by a backing
// event: every emission of changes becomes the new current value and
// notifies subscribers. changes may be nil.
func NewReactive[T any](v T, changes *Event[T]) *Reactive[T] {
	r := newRootReactive(v, "reactive")
	if changes != nil {
		r.mu.Lock()
		r.st.backing = changes
		r.mu.Unlock()
		edge(r.graph, changes, r)
		r.onDispose(changes.subscribe(r.updateValue))
	}
	return r
}

func newRootReactive[T any](v T, label string) *Reactive[T] {
	r := &Reactive[T]{id: nextID()}
	r.st = &reactiveState[T]{value: v, changes: newFuture[*Event[T]]()}
	r.graph = trackNode(r, label, func() { CleanupR(r) })
	return r
}

// NodeID implements Node.
func (r *Reactive[T]) NodeID() uint64 { return r.id }

// Kind implements Node.
func (r *Reactive[T]) Kind() NodeKind { return KindReactive }

// Get returns the current value. For a live derived node this applies the
// fused function to the root source's current value: exactly one call, not
// a cascade. Panics with ErrFixForwardRead on an unconstructed forward
// reference.
func (r *Reactive[T]) Get() T {
	return r.Peek()
}

// Peek returns the current value without any subscription bookkeeping.
func (r *Reactive[T]) Peek() T {
	r.mu.Lock()
	st := r.st
	if st == nil {
		r.mu.Unlock()
		panic(ErrFixForwardRead)
	}
	if d := st.deriv; d != nil && !st.disposed {
		r.mu.Unlock()
		return d.fn(d.source.peekAny()).(T)
	}
	v := st.value
	r.mu.Unlock()
	return v
}

// Sample returns r's current value as a plain snapshot read.
func Sample[T any](r *Reactive[T]) T {
	return r.Peek()
}

// Changes returns the event of r's value changes, materializing it on
// first access. For an event-backed reactive this is the backing event
// itself.
func (r *Reactive[T]) Changes() *Event[T] {
	r.mu.Lock()
	st := r.st
	if st == nil {
		r.mu.Unlock()
		panic(ErrFixForwardRead)
	}
	if ch, ok := st.changes.Value(); ok {
		r.mu.Unlock()
		return ch
	}
	if st.backing != nil {
		ch := st.backing
		st.changes.Resolve(ch)
		r.mu.Unlock()
		return ch
	}
	r.mu.Unlock()

	ch, emit := newEvent[T]("changes")
	edge(ch.graph, r, ch)

	r.mu.Lock()
	if existing, ok := st.changes.Value(); ok {
		r.mu.Unlock()
		Cleanup(ch)
		return existing
	}
	st.changes.Resolve(ch)
	st.emitChanges = emit
	r.activateLocked(st)
	r.mu.Unlock()
	return ch
}

// updateValue is the single update path: it stores v, notifies direct
// subscribers in registration order, and feeds the materialized changes
// event. No-op after cleanup.
func (r *Reactive[T]) updateValue(v T) {
	r.mu.Lock()
	st := r.st
	if st == nil || st.disposed {
		r.mu.Unlock()
		return
	}
	st.value = v
	subs := make([]*reactiveSub[T], len(st.subs))
	copy(subs, st.subs)
	emit := st.emitChanges
	r.mu.Unlock()

	for _, sub := range subs {
		s := sub
		safeNotify(r.id, func() { s.fn(v) })
	}
	if emit != nil {
		emit(v)
	}
}

// watch registers fn for subsequent values only (no immediate call).
// Activates the push path of a derived node on first use.
func (r *Reactive[T]) watch(fn func(T)) func() {
	r.mu.Lock()
	st := r.st
	if st == nil {
		r.mu.Unlock()
		panic(ErrFixForwardRead)
	}
	if st.disposed {
		r.mu.Unlock()
		return func() {}
	}
	r.activateLocked(st)

	sub := &reactiveSub[T]{id: nextID(), fn: fn}
	st.subs = append(st.subs, sub)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.st == nil {
			return
		}
		for i, s := range r.st.subs {
			if s.id == sub.id {
				r.st.subs = append(r.st.subs[:i], r.st.subs[i+1:]...)
				return
			}
		}
	}
}

// activateLocked attaches a derived node to its root source once, turning
// the pull-based derivation into push for as long as the node lives.
func (r *Reactive[T]) activateLocked(st *reactiveState[T]) {
	d := st.deriv
	if d == nil || d.attached {
		return
	}
	d.attached = true
	fn := d.fn
	unsub := d.source.watchAny(func(v any) {
		r.updateValue(fn(v).(T))
	})
	st.disposers = append(st.disposers, unsub)
}

// onDispose appends an internal disposer tied to r's lifetime.
func (r *Reactive[T]) onDispose(fn func()) {
	r.mu.Lock()
	st := r.st
	if st == nil || st.disposed {
		r.mu.Unlock()
		fn()
		return
	}
	st.disposers = append(st.disposers, fn)
	r.mu.Unlock()
}

// peekAny implements reactiveCore.
func (r *Reactive[T]) peekAny() any { return r.Peek() }

// watchAny implements reactiveCore.
func (r *Reactive[T]) watchAny(fn func(any)) func() {
	return r.watch(func(v T) { fn(v) })
}

// fusionRoot resolves the source a new derivation should hang off: the
// reactive itself if it is a root, or its recorded root source if it is
// already a derivation. The returned base function is the existing
// composed transform, or nil for a root.
func fusionRoot[T any](r *Reactive[T]) (reactiveCore, func(any) any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st != nil && r.st.deriv != nil {
		return r.st.deriv.source, r.st.deriv.fn
	}
	return r, nil
}

// MapR returns a reactive derived from r by fn, using derivation fusion:
// the result records its ultimate non-derived source together with one
// composed function rather than subscribing a new layer on top of r. Any
// chain of MapR calls stays one hop deep, for both pulls and the push
// subscription attached once the result is observed.
func MapR[T, U any](r *Reactive[T], fn func(T) U) *Reactive[U] {
	src, base := fusionRoot(r)

	var composed func(any) any
	if base == nil {
		composed = func(v any) any { return fn(v.(T)) }
	} else {
		composed = func(v any) any { return fn(base(v).(T)) }
	}

	out := &Reactive[U]{id: nextID()}
	out.st = &reactiveState[U]{
		changes: newFuture[*Event[U]](),
		deriv:   &derivation{source: src, fn: composed},
	}
	out.graph = trackNode(out, "map", func() { CleanupR(out) })
	edge(out.graph, src, out)
	if out.graph != nil {
		out.graph.setDerivation(out.id, src.NodeID())
	}
	return out
}

// DerivationSource reports the root source a derived reactive is fused to.
// ok is false for root reactives. Intended for structural tests of the
// one-hop fusion invariant.
func DerivationSource[T any](r *Reactive[T]) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st == nil || r.st.deriv == nil {
		return 0, false
	}
	return r.st.deriv.source.NodeID(), true
}

// Ap applies a reactive function to a reactive value. The result holds
// independent subscriptions to both inputs and recomputes whenever either
// changes.
func Ap[T, U any](rv *Reactive[T], rf *Reactive[func(T) U]) *Reactive[U] {
	out := newRootReactive(rf.Peek()(rv.Peek()), "ap")
	edge(out.graph, rv, out)
	edge(out.graph, rf, out)

	recompute := func() { out.updateValue(rf.Peek()(rv.Peek())) }
	out.onDispose(rv.watch(func(T) { recompute() }))
	out.onDispose(rf.watch(func(func(T) U) { recompute() }))
	return out
}

// Chain is monadic bind: each new outer value produces a new inner
// reactive; the previous inner subscription is disposed before the new one
// is attached, so a switched-away inner can neither leak nor emit.
func Chain[T, U any](r *Reactive[T], fn func(T) *Reactive[U]) *Reactive[U] {
	inner := fn(r.Peek())
	out := newRootReactive(inner.Peek(), "chain")
	edge(out.graph, r, out)
	edge(out.graph, inner, out)

	unsubInner := inner.watch(out.updateValue)
	out.onDispose(func() { unsubInner() })
	out.onDispose(r.watch(func(v T) {
		unsubInner()
		next := fn(v)
		edge(out.graph, next, out)
		out.updateValue(next.Peek())
		unsubInner = next.watch(out.updateValue)
	}))
	return out
}

// Subscribe is immediate consumption: fn is called synchronously with the
// current value at subscribe time, then with every subsequent value, with
// no coalescing. The returned function removes the subscription.
func Subscribe[T any](r *Reactive[T], fn func(T)) func() {
	fn(r.Get())
	unsub := sync.OnceFunc(r.watch(fn))
	if sc := currentScope(); sc != nil {
		sc.OnCleanup(unsub)
	}
	return unsub
}

// EffectPostFlush is deferred consumption: fn runs once per scheduler
// flush, carrying only the latest value as of flush time. Multiple
// synchronous updates within one batch collapse into a single call. An
// initial call with the current value is scheduled at registration.
//
// Use this instead of Subscribe when a side effect depends on work done by
// other subscribers: by flush time their immediate notifications have
// already settled, so no subscription-order race exists.
func EffectPostFlush[T any](r *Reactive[T], fn func(T)) func() {
	d := &deferred[T]{fn: fn}
	d.push(r.Get())
	unsub := sync.OnceFunc(r.watch(d.push))
	if sc := currentScope(); sc != nil {
		sc.OnCleanup(unsub)
	}
	return unsub
}

// Effect is a synonym for EffectPostFlush; both names exist because call
// sites read better with either depending on intent.
func Effect[T any](r *Reactive[T], fn func(T)) func() {
	return EffectPostFlush(r, fn)
}

// OnCleanupR registers a disposer to run when r is cleaned up. If r is
// already cleaned up, fn runs immediately. Each disposer runs at most once.
func OnCleanupR[T any](r *Reactive[T], fn func()) {
	once := sync.OnceFunc(fn)

	r.mu.Lock()
	st := r.st
	if st == nil {
		r.mu.Unlock()
		panic(ErrFixForwardRead)
	}
	if st.disposed {
		r.mu.Unlock()
		once()
		return
	}
	st.disposers = append(st.disposers, once)
	r.mu.Unlock()

	if sc := currentScope(); sc != nil {
		sc.OnCleanup(once)
	}
}

// CleanupR runs and clears r's disposers and subscribers. Further updates
// are silently ignored. Safe to call more than once. A live derivation is
// torn down after capturing its current value, so post-cleanup reads stay
// stable.
func CleanupR[T any](r *Reactive[T]) {
	r.mu.Lock()
	st := r.st
	if st == nil || st.disposed {
		r.mu.Unlock()
		return
	}
	st.disposed = true
	d := st.deriv
	st.deriv = nil
	disposers := st.disposers
	st.disposers = nil
	st.subs = nil
	r.mu.Unlock()

	if d != nil {
		// Best-effort final pull; the source may itself be gone.
		func() {
			defer func() { _ = recover() }()
			v := d.fn(d.source.peekAny()).(T)
			r.mu.Lock()
			st.value = v
			r.mu.Unlock()
		}()
	}

	for i := len(disposers) - 1; i >= 0; i-- {
		disposers[i]()
	}

	if r.graph != nil {
		r.graph.removeNode(r.id)
	}
}
