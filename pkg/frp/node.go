package frp

import (
	"log/slog"
	"sync/atomic"
)

// NodeKind identifies the variant of a reactive graph node.
type NodeKind uint8

const (
	KindEvent NodeKind = iota + 1
	KindReactive
	KindFuture
)

// String returns a human-readable name for the node kind.
func (k NodeKind) String() string {
	switch k {
	case KindEvent:
		return "Event"
	case KindReactive:
		return "Reactive"
	case KindFuture:
		return "Future"
	default:
		return "Unknown"
	}
}

// Node is anything that participates in the dataflow graph.
// Event[T], Reactive[T], and Future[T] all implement it.
type Node interface {
	// NodeID returns a unique identifier for this node.
	// IDs are monotonically increasing and never reused.
	NodeID() uint64

	// Kind returns the variant tag for this node.
	Kind() NodeKind
}

// IsReactive reports whether v is a *Reactive of any element type.
func IsReactive(v any) bool {
	n, ok := v.(Node)
	return ok && n.Kind() == KindReactive
}

// IsEvent reports whether v is an *Event of any element type.
func IsEvent(v any) bool {
	n, ok := v.(Node)
	return ok && n.Kind() == KindEvent
}

// globalIDCounter is the source of unique IDs for all graph nodes.
// Atomic operations give thread-safe ID generation without locks.
var globalIDCounter uint64

// nextID returns the next unique node ID.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// logger is the package logger for recovered subscriber panics.
var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger used for recovered subscriber and
// scheduler-callback panics. Defaults to slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func log() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// safeNotify invokes a single subscriber callback, isolating panics so one
// failing consumer cannot block the rest of the notification loop.
func safeNotify(node uint64, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log().Error("frp: subscriber panicked", "node", node, "panic", r)
		}
	}()
	fn()
}

// safeCall isolates panics from callbacks that are not tied to a node:
// scheduler flushes, scope cleanups, graph watchers.
func safeCall(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log().Error("frp: callback panicked", "in", what, "panic", r)
		}
	}()
	fn()
}
