// Package ebb provides the public API for the ebb reactive engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/ebb-frp/ebb"
//
// Usage:
//
//	clicks, emit := ebb.NewEvent[int]()
//	total := ebb.Fold(clicks, 0, func(acc, n int) int { return acc + n })
//	ebb.Subscribe(total, render)
//
// The full surface, including the less common combinators, lives in
// pkg/frp; the observability layer is pkg/frpdebug.
package ebb

import (
	"github.com/ebb-frp/ebb/pkg/frp"
)

// =============================================================================
// Core types (pkg/frp exposed at the root)
// =============================================================================

// Event is a discrete push-based stream. See frp.Event.
type Event[T any] = frp.Event[T]

// Reactive is a continuous value with memory. See frp.Reactive.
type Reactive[T any] = frp.Reactive[T]

// Future is a one-shot value container. See frp.Future.
type Future[T any] = frp.Future[T]

// Pair groups an event occurrence with a sampled reactive value.
type Pair[A, B any] = frp.Pair[A, B]

// Scope is an ambient resource tracker for bulk disposal.
type Scope = frp.Scope

// Graph is the injectable dependency-graph tracker.
type Graph = frp.Graph

// GraphSnapshot is a point-in-time copy of a Graph, safe to serialize.
type GraphSnapshot = frp.GraphSnapshot

// Scheduler coalesces deferred-effect callbacks into flushes.
type Scheduler = frp.Scheduler

// Node is anything that participates in the dataflow graph.
type Node = frp.Node

// NodeKind identifies the variant of a graph node.
type NodeKind = frp.NodeKind

// Node kind tags.
const (
	KindEvent    = frp.KindEvent
	KindReactive = frp.KindReactive
	KindFuture   = frp.KindFuture
)

// Sentinel errors.
var (
	ErrFixForwardRead = frp.ErrFixForwardRead
	ErrFutureResolved = frp.ErrFutureResolved
	ErrScopeDisposed  = frp.ErrScopeDisposed
)

// =============================================================================
// Constructors
// =============================================================================

// NewEvent creates a discrete event stream and its emitter.
func NewEvent[T any]() (*Event[T], func(T)) {
	return frp.NewEvent[T]()
}

// Never returns an event that never emits.
func Never[T any]() *Event[T] {
	return frp.Never[T]()
}

// Of returns a constant reactive.
func Of[T any](v T) *Reactive[T] {
	return frp.Of(v)
}

// NewReactive returns a reactive holding v, optionally driven by a backing
// event. changes may be nil.
func NewReactive[T any](v T, changes *Event[T]) *Reactive[T] {
	return frp.NewReactive(v, changes)
}

// NewFuture creates an unresolved future.
func NewFuture[T any]() *Future[T] {
	return frp.NewFuture[T]()
}

// NewScope creates a resource-tracking scope.
func NewScope() *Scope {
	return frp.NewScope()
}

// NewGraph creates an empty graph tracker.
func NewGraph() *Graph {
	return frp.NewGraph()
}

// =============================================================================
// Combinators
// =============================================================================

// Map returns an event that emits fn(v) for every emission v of e.
func Map[T, U any](e *Event[T], fn func(T) U) *Event[U] {
	return frp.Map(e, fn)
}

// Filter forwards only the emissions of e for which pred returns true.
func Filter[T any](e *Event[T], pred func(T) bool) *Event[T] {
	return frp.Filter(e, pred)
}

// MergeAll forwards emissions from every input, in emit call order.
func MergeAll[T any](events []*Event[T]) *Event[T] {
	return frp.MergeAll(events)
}

// Fold returns a reactive holding the running reduction of e.
func Fold[T, S any](e *Event[T], seed S, fn func(S, T) S) *Reactive[S] {
	return frp.Fold(e, seed, fn)
}

// Stepper returns a reactive holding the latest emission of e.
func Stepper[T any](e *Event[T], initial T) *Reactive[T] {
	return frp.Stepper(e, initial)
}

// Snapshot fires with fn(v, current) whenever e fires with v.
func Snapshot[A, B, C any](e *Event[A], r *Reactive[B], fn func(A, B) C) *Event[C] {
	return frp.Snapshot(e, r, fn)
}

// MapR returns a reactive derived from r by fn, with derivation fusion.
func MapR[T, U any](r *Reactive[T], fn func(T) U) *Reactive[U] {
	return frp.MapR(r, fn)
}

// Chain is monadic bind over reactives.
func Chain[T, U any](r *Reactive[T], fn func(T) *Reactive[U]) *Reactive[U] {
	return frp.Chain(r, fn)
}

// Fix builds a self-referential reactive through a forward reference.
func Fix[T any](initial T, fn func(*Reactive[T]) *Event[T]) *Reactive[T] {
	return frp.Fix(initial, fn)
}

// FixWith is Fix returning an auxiliary artifact from the builder.
func FixWith[T, A any](initial T, builder func(*Reactive[T]) (*Event[T], A)) (*Reactive[T], A) {
	return frp.FixWith(initial, builder)
}

// =============================================================================
// Consumption
// =============================================================================

// Subscribe calls fn with the current value now, then with every change.
func Subscribe[T any](r *Reactive[T], fn func(T)) func() {
	return frp.Subscribe(r, fn)
}

// SubscribeE calls fn synchronously with every emission of e.
func SubscribeE[T any](e *Event[T], fn func(T)) func() {
	return frp.SubscribeE(e, fn)
}

// Effect runs fn at most once per scheduler flush with the latest value.
func Effect[T any](r *Reactive[T], fn func(T)) func() {
	return frp.Effect(r, fn)
}

// EffectE is the deferred, coalescing consumer of an event.
func EffectE[T any](e *Event[T], fn func(T)) func() {
	return frp.EffectE(e, fn)
}

// =============================================================================
// Turns
// =============================================================================

// Batch runs fn as one logical turn; deferred consumers observe a single
// coalesced flush at the outermost batch exit.
func Batch(fn func()) {
	frp.Batch(fn)
}

// Wait blocks until the default scheduler is idle.
func Wait() {
	frp.Wait()
}

// WithGraph runs fn with g installed as the ambient graph tracker.
func WithGraph(g *Graph, fn func()) {
	frp.WithGraph(g, fn)
}
