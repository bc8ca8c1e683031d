package frp

import "errors"

// ErrFixForwardRead is the panic value raised when the forward reference
// passed to Fix or FixWith is read (Get, Peek, Changes) before construction
// has completed. The forward reference exists only for wiring into event
// combinators that sample it later; it has no value until the builder
// returns and the reactive is back-filled.
var ErrFixForwardRead = errors.New("frp: fix forward reference read before construction completed")

// ErrFutureResolved is returned by Future.Resolve when the future has
// already been resolved. A Future carries exactly one value.
var ErrFutureResolved = errors.New("frp: future already resolved")

// ErrScopeDisposed is the panic value raised when Run is called on a Scope
// that has already been disposed. A disposed scope cannot track new nodes.
var ErrScopeDisposed = errors.New("frp: scope already disposed")
