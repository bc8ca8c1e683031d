package frp

import (
	"sync"
	"time"
)

// Scheduler coalesces deferred-effect callbacks into flushes. Any number
// of ScheduleUpdate calls made while a flush is pending are absorbed into
// that flush; callbacks scheduled during a flush run in the same flush
// loop, without an extra hop.
//
// Inside Batch, nothing flushes until the outermost batch exits, and that
// flush runs synchronously on the batching goroutine. Outside Batch, the
// flush runs on its own goroutine as soon as the runtime schedules it;
// Wait blocks until the queue is idle. Batch is therefore how a caller
// delimits a "turn": it does not change what immediate subscribers see,
// only where the deferred flush lands.
type Scheduler struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []func()
	flushing bool
	observer FlushObserver
}

// FlushObserver is called after each completed flush with the number of
// callbacks run and the wall time the flush took.
type FlushObserver func(callbacks int, elapsed time.Duration)

// NewScheduler creates an idle scheduler.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// defaultScheduler serves the package-level ScheduleUpdate/Batch/Wait API.
var defaultScheduler = NewScheduler()

// DefaultScheduler returns the scheduler behind the package-level API,
// for instrumentation hooks.
func DefaultScheduler() *Scheduler {
	return defaultScheduler
}

// SetFlushObserver installs obs, returning the previous observer.
func (s *Scheduler) SetFlushObserver(obs FlushObserver) FlushObserver {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.observer
	s.observer = obs
	return old
}

// Schedule enqueues fn for the next flush. If no flush is pending and the
// caller is not inside a Batch, one is started.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.flushing {
		s.mu.Unlock()
		return
	}
	if batchDepth() > 0 {
		s.mu.Unlock()
		noteBatchScheduler(s)
		return
	}
	s.flushing = true
	s.mu.Unlock()
	go s.flush()
}

// kick starts a synchronous flush if work is queued and none is running.
// Called at the outermost Batch exit.
func (s *Scheduler) kick() {
	s.mu.Lock()
	if s.flushing || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	s.mu.Unlock()
	s.flush()
}

// flush drains the queue until empty. Callbacks appended mid-flush are
// picked up by the same loop.
func (s *Scheduler) flush() {
	start := time.Now()
	ran := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			obs := s.observer
			s.mu.Unlock()
			if obs != nil {
				obs(ran, time.Since(start))
			}
			s.mu.Lock()
			if len(s.queue) > 0 {
				// The observer scheduled more work; stay in this flush.
				s.mu.Unlock()
				continue
			}
			s.flushing = false
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		for _, fn := range batch {
			ran++
			safeCall("flush", fn)
		}
	}
}

// Wait blocks until the scheduler has no queued or running work.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	for s.flushing || len(s.queue) > 0 {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// ScheduleUpdate enqueues fn on the default scheduler. Any number of calls
// within one batch or pending flush coalesce into a single flush.
func ScheduleUpdate(fn func()) {
	defaultScheduler.Schedule(fn)
}

// Wait blocks until the default scheduler is idle. Hosts without a render
// loop call this at turn boundaries; tests use it to observe deferred
// effects deterministically.
func Wait() {
	defaultScheduler.Wait()
}

// Batch runs fn as one logical turn. Emissions inside fn are still
// delivered synchronously to immediate subscribers; deferred consumers
// observe exactly one coalesced flush when the outermost batch exits.
// Batches nest.
func Batch(fn func()) {
	incrementBatchDepth()
	defer func() {
		if decrementBatchDepth() {
			for _, s := range takeBatchSchedulers() {
				s.kick()
			}
		}
	}()
	fn()
}

// deferred is the coalescing listener used by Effect, EffectPostFlush and
// EffectE: it keeps only the latest value and is scheduled at most once
// per flush.
type deferred[T any] struct {
	mu      sync.Mutex
	latest  T
	pending bool
	fn      func(T)
}

func (d *deferred[T]) push(v T) {
	d.mu.Lock()
	d.latest = v
	already := d.pending
	d.pending = true
	d.mu.Unlock()

	if !already {
		ScheduleUpdate(d.run)
	}
}

func (d *deferred[T]) run() {
	d.mu.Lock()
	v := d.latest
	d.pending = false
	d.mu.Unlock()
	d.fn(v)
}
