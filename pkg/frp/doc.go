// Package frp is a functional-reactive engine built around two dual
// primitives: Event, a discrete push-based stream, and Reactive, a
// continuous value with memory.
//
// # Events
//
// An event is a notification channel with no stored value:
//
//	clicks, emit := frp.NewEvent[int]()
//	doubled := frp.Map(clicks, func(n int) int { return n * 2 })
//	frp.SubscribeE(doubled, func(n int) { fmt.Println(n) })
//	emit(21) // prints 42
//
// Emission is synchronous, in subscription order, with the subscriber list
// snapshotted up front; a panicking subscriber is logged and skipped, not
// allowed to starve the rest.
//
// # Reactives
//
// A reactive holds a current value and updates it from a backing event or
// from the combinator that built it:
//
//	total := frp.Fold(clicks, 0, func(acc, n int) int { return acc + n })
//	emit(1)
//	emit(2)
//	total.Get() // 3
//
// MapR uses derivation fusion: a chain of maps collapses into one composed
// function applied in a single hop, so deep chains cost O(1) per update.
// Subscribe is immediate consumption; Effect and EffectPostFlush defer to
// the next scheduler flush and coalesce a burst of updates into one call
// carrying the latest value.
//
// # Batching
//
// Batch delimits a logical turn. Immediate subscribers still see every
// emission synchronously; deferred consumers see exactly one flush when
// the outermost batch exits:
//
//	frp.Batch(func() {
//	    emit(1)
//	    emit(2)
//	    emit(3)
//	}) // one deferred flush, latest value 3
//
// # Recursion, scopes, and inspection
//
// Fix and FixWith build self-referential reactives through a forward
// reference that is back-filled after construction. Scope tracks every
// node created while it is active for bulk disposal. Graph is an
// injectable tracker recording nodes, edges, derivation records, and
// emissions for debugging and the frpdebug inspector.
//
// # Concurrency
//
// Propagation runs synchronously on the emitting goroutine; the only
// asynchronous boundary is the scheduler's flush. Internal state is
// mutex-guarded with the copy-before-notify pattern, so re-entrant
// emission from inside a subscriber is legal.
package frp
