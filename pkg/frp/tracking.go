package frp

import (
	"runtime"
	"sync"
)

// trackingContext holds the ambient reactive state for a goroutine:
// the innermost active scope, the installed graph tracker, and the
// batch nesting depth. Each goroutine has its own context so concurrent
// callers do not observe each other's scopes or batches.
type trackingContext struct {
	// scope is the innermost active Scope, or nil.
	// Node constructions and disposer registrations are recorded against it.
	scope *Scope

	// graph is the installed graph tracker, or nil.
	// Constructors record nodes and edges into it when present.
	graph *Graph

	// batchDepth tracks nested Batch() calls. When > 0, scheduled updates
	// are held until the outermost batch completes.
	batchDepth int

	// batchSchedulers are the schedulers that queued work during the
	// current batch. Each gets kicked at the outermost batch exit.
	batchSchedulers []*Scheduler
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine,
// parsed from the runtime stack header. Implementation detail; never
// exposed.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> ".
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current
// goroutine, creating one if needed.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// currentScope returns the innermost active scope, or nil.
func currentScope() *Scope {
	return getTrackingContext().scope
}

// setCurrentScope installs s as the ambient scope and returns the previous
// one so it can be restored.
func setCurrentScope(s *Scope) *Scope {
	ctx := getTrackingContext()
	old := ctx.scope
	ctx.scope = s
	return old
}

// currentGraph returns the installed graph tracker, or nil.
func currentGraph() *Graph {
	return getTrackingContext().graph
}

// setCurrentGraph installs g as the ambient graph tracker and returns the
// previous one.
func setCurrentGraph(g *Graph) *Graph {
	ctx := getTrackingContext()
	old := ctx.graph
	ctx.graph = g
	return old
}

// WithGraph runs fn with g installed as the ambient graph tracker.
// Every node and edge constructed inside fn is recorded into g.
// Trackers nest; the innermost one wins. Passing nil disables tracking
// for the duration of fn.
func WithGraph(g *Graph, fn func()) {
	old := setCurrentGraph(g)
	defer setCurrentGraph(old)
	fn()
}

// batchDepth returns the current batch nesting depth for this goroutine.
func batchDepth() int {
	return getTrackingContext().batchDepth
}

// incrementBatchDepth increases the batch depth by 1.
func incrementBatchDepth() {
	getTrackingContext().batchDepth++
}

// decrementBatchDepth decreases the batch depth by 1 and reports whether
// the outermost batch just completed.
func decrementBatchDepth() bool {
	ctx := getTrackingContext()
	ctx.batchDepth--
	return ctx.batchDepth == 0
}

// noteBatchScheduler records that s queued work while a batch is open on
// this goroutine, so the outermost batch exit can kick it.
func noteBatchScheduler(s *Scheduler) {
	ctx := getTrackingContext()
	for _, existing := range ctx.batchSchedulers {
		if existing == s {
			return
		}
	}
	ctx.batchSchedulers = append(ctx.batchSchedulers, s)
}

// takeBatchSchedulers returns and clears the schedulers noted during the
// batch that just closed.
func takeBatchSchedulers() []*Scheduler {
	ctx := getTrackingContext()
	scheds := ctx.batchSchedulers
	ctx.batchSchedulers = nil
	return scheds
}

// trackNode records a freshly constructed node against the ambient scope
// and graph, if any. label names the constructing operation ("map",
// "stepper", ...) for graph inspection.
func trackNode(n Node, label string, dispose func()) *Graph {
	ctx := getTrackingContext()
	if ctx.scope != nil && dispose != nil {
		ctx.scope.OnCleanup(dispose)
	}
	if ctx.graph != nil {
		ctx.graph.addNode(n, label)
	}
	return ctx.graph
}
