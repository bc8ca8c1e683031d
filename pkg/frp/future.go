package frp

import "sync"

// Future is a one-shot value container: it resolves exactly once and
// replays its value to late observers. The engine uses it to materialize a
// Reactive's changes event lazily, on first access rather than eagerly at
// construction.
type Future[T any] struct {
	id uint64

	mu       sync.Mutex
	resolved bool
	value    T
	waiters  []func(T)
}

// NewFuture creates an unresolved future.
func NewFuture[T any]() *Future[T] {
	f := newFuture[T]()
	trackNode(f, "future", nil)
	return f
}

// newFuture creates a future without scope or graph bookkeeping. The
// engine's internal cells (the lazy Changes slot of every reactive) use
// this form: their lifetime is owned by the reactive, so tracking them as
// graph nodes would leave phantom entries no cleanup path removes.
func newFuture[T any]() *Future[T] {
	return &Future[T]{id: nextID()}
}

// NodeID implements Node.
func (f *Future[T]) NodeID() uint64 { return f.id }

// Kind implements Node.
func (f *Future[T]) Kind() NodeKind { return KindFuture }

// Resolve sets the future's value and runs any registered observers.
// Returns ErrFutureResolved if called a second time.
func (f *Future[T]) Resolve(v T) error {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return ErrFutureResolved
	}
	f.resolved = true
	f.value = v
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()

	for _, fn := range waiters {
		w := fn
		safeNotify(f.id, func() { w(v) })
	}
	return nil
}

// Value returns the resolved value, if any.
func (f *Future[T]) Value() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.resolved
}

// Resolved reports whether the future has a value.
func (f *Future[T]) Resolved() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

// OnResolve registers fn to run with the value once resolved.
// If the future is already resolved, fn runs synchronously now.
func (f *Future[T]) OnResolve(fn func(T)) {
	f.mu.Lock()
	if f.resolved {
		v := f.value
		f.mu.Unlock()
		fn(v)
		return
	}
	f.waiters = append(f.waiters, fn)
	f.mu.Unlock()
}
