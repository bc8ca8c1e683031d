package frp

// Map returns an event that emits fn(v) for every emission v of e.
func Map[T, U any](e *Event[T], fn func(T) U) *Event[U] {
	out, emit := newEvent[U]("map")
	edge(out.graph, e, out)
	out.onDispose(e.subscribe(func(v T) { emit(fn(v)) }))
	return out
}

// Filter returns an event that forwards only the emissions of e for which
// pred returns true.
func Filter[T any](e *Event[T], pred func(T) bool) *Event[T] {
	out, emit := newEvent[T]("filter")
	edge(out.graph, e, out)
	out.onDispose(e.subscribe(func(v T) {
		if pred(v) {
			emit(v)
		}
	}))
	return out
}

// MergeAll returns an event that forwards emissions from every input.
// Delivery order is call order: values appear in the exact order the
// underlying emit calls execute, not in input-slice order.
//
// MergeAll(nil) and MergeAll of an empty slice return a permanent no-op
// event. MergeAll of a single event returns that event itself, preserving
// referential identity for cleanup bookkeeping.
func MergeAll[T any](events []*Event[T]) *Event[T] {
	switch len(events) {
	case 0:
		return Never[T]()
	case 1:
		return events[0]
	}

	out, emit := newEvent[T]("mergeAll")
	for _, e := range events {
		edge(out.graph, e, out)
		out.onDispose(e.subscribe(emit))
	}
	return out
}

// MergeWith merges two events of different element types, tagging each
// side's emissions through its transform. Delivery order is call order of
// the underlying emits.
func MergeWith[A, B, T any](a *Event[A], b *Event[B], fa func(A) T, fb func(B) T) *Event[T] {
	out, emit := newEvent[T]("mergeWith")
	edge(out.graph, a, out)
	edge(out.graph, b, out)
	out.onDispose(a.subscribe(func(v A) { emit(fa(v)) }))
	out.onDispose(b.subscribe(func(v B) { emit(fb(v)) }))
	return out
}

// Fold returns a reactive whose value is the running reduction of e.
// Starting from seed, each emission v replaces the value with fn(current, v).
func Fold[T, S any](e *Event[T], seed S, fn func(S, T) S) *Reactive[S] {
	r := newRootReactive(seed, "fold")
	edge(r.graph, e, r)
	r.onDispose(e.subscribe(func(v T) {
		r.updateValue(fn(r.Peek(), v))
	}))
	return r
}

// Stepper returns a reactive holding the latest emission of e, starting
// from initial.
func Stepper[T any](e *Event[T], initial T) *Reactive[T] {
	r := newRootReactive(initial, "stepper")
	edge(r.graph, e, r)
	r.onDispose(e.subscribe(r.updateValue))
	return r
}

// Snapshot returns an event that fires with fn(v, current) whenever e fires
// with v, where current is r's value sampled at fire time. No subscription
// to r is created.
func Snapshot[A, B, C any](e *Event[A], r *Reactive[B], fn func(A, B) C) *Event[C] {
	out, emit := newEvent[C]("snapshot")
	edge(out.graph, e, out)
	edge(out.graph, r, out)
	out.onDispose(e.subscribe(func(v A) { emit(fn(v, r.Peek())) }))
	return out
}

// Pair groups an event occurrence with a sampled reactive value.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip returns an event pairing each emission of e with r's value at fire
// time, without subscribing to r.
func Zip[A, B any](e *Event[A], r *Reactive[B]) *Event[Pair[A, B]] {
	return Snapshot(e, r, func(a A, b B) Pair[A, B] {
		return Pair[A, B]{First: a, Second: b}
	})
}

// Tag returns an event that fires with r's current value whenever e fires,
// discarding e's own values. No subscription to r is created.
func Tag[A, B any](e *Event[A], r *Reactive[B]) *Event[B] {
	return Snapshot(e, r, func(_ A, b B) B { return b })
}

// SampleE fires with r's current value on every occurrence of e. Same
// semantics as Tag; this name reads better when the occurrence is a bare
// trigger:
//
//	SampleE(ticks, temperature)
func SampleE[A, B any](e *Event[A], r *Reactive[B]) *Event[B] {
	return Tag(e, r)
}

// When gates e by a boolean condition sampled at fire time.
func When[T any](e *Event[T], pred func() bool) *Event[T] {
	return Filter(e, func(T) bool { return pred() })
}

// WhenR gates e by the current value of a boolean reactive, sampled at fire
// time without subscribing.
func WhenR[T any](e *Event[T], cond *Reactive[bool]) *Event[T] {
	out := When(e, cond.Peek)
	edge(out.graph, cond, out)
	return out
}

// SwitchE forwards emissions from initial until replacements fires, then
// from each replacement event in turn. Switching detaches the previous
// source before attaching the new one: no double delivery, no gap, and no
// emissions from a switched-away source.
func SwitchE[T any](initial *Event[T], replacements *Event[*Event[T]]) *Event[T] {
	out, emit := newEvent[T]("switchE")
	edge(out.graph, initial, out)
	edge(out.graph, replacements, out)

	detach := initial.subscribe(emit)
	out.onDispose(func() { detach() })
	out.onDispose(replacements.subscribe(func(next *Event[T]) {
		detach()
		edge(out.graph, next, out)
		detach = next.subscribe(emit)
	}))
	return out
}

// SwitchR forwards emissions from the event currently held by r.
// When r's value changes to a new event, the previous source is detached
// before the new one is attached.
func SwitchR[T any](r *Reactive[*Event[T]]) *Event[T] {
	out, emit := newEvent[T]("switchR")
	edge(out.graph, r, out)

	cur := r.Peek()
	var detach func()
	if cur != nil {
		edge(out.graph, cur, out)
		detach = cur.subscribe(emit)
	} else {
		detach = func() {}
	}
	out.onDispose(func() { detach() })
	out.onDispose(r.watch(func(next *Event[T]) {
		detach()
		if next == nil {
			detach = func() {}
			return
		}
		edge(out.graph, next, out)
		detach = next.subscribe(emit)
	}))
	return out
}
