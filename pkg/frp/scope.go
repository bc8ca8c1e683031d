package frp

import (
	"sync"
	"sync/atomic"
)

// Scope is an ambient resource tracker. While Run(fn) executes, every node
// construction and disposer registration on this goroutine is recorded
// against the scope, so Dispose can tear down everything fn created
// without the caller collecting handles. Nested scopes route tracking to
// the innermost active one only; a scope created inside another scope's
// Run is itself disposed with the outer scope.
type Scope struct {
	id uint64

	mu       sync.Mutex
	cleanups []func()
	disposed atomic.Bool
}

// NewScope creates a scope. If another scope is currently active, the new
// scope is registered with it for hierarchical teardown.
func NewScope() *Scope {
	s := &Scope{id: nextID()}
	if parent := currentScope(); parent != nil {
		parent.OnCleanup(s.Dispose)
	}
	return s
}

// Run executes fn with s as the innermost active scope.
// Panics with ErrScopeDisposed if s has already been disposed.
func (s *Scope) Run(fn func()) {
	if s.disposed.Load() {
		panic(ErrScopeDisposed)
	}
	old := setCurrentScope(s)
	defer setCurrentScope(old)
	fn()
}

// OnCleanup registers fn to run on Dispose. If the scope is already
// disposed, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}
	s.mu.Lock()
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// IsDisposed reports whether the scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// Dispose tears down everything recorded against the scope, in reverse
// registration order. Repeated calls are no-ops.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	s.mu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		safeCall("scope cleanup", cleanups[i])
	}
}
