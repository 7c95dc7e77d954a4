package archive

import (
	"sync"

	"twarchive/internal/model"
)

// frontier is the multiset of PendingRefs awaiting resolution for one
// account, shared by that account's worker pool. It tracks in-flight work
// so the pool can tell "queue momentarily empty" apart from "walk done":
// the walk is done only when the queue is empty AND no ref is being
// resolved AND seeding has finished.
type frontier struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []model.PendingRef
	active int // refs handed out to workers plus producers still seeding
	closed bool
}

func newFrontier() *frontier {
	f := &frontier{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// push adds refs to the queue. Refs pushed after close are dropped.
func (f *frontier) push(refs ...model.PendingRef) {
	if len(refs) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.queue = append(f.queue, refs...)
	f.cond.Broadcast()
}

// pop blocks until a ref is available or the walk is finished; ok=false
// means the worker should exit. Each successful pop must be paired with a
// call to done.
func (f *frontier) pop() (model.PendingRef, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if f.closed {
			return model.PendingRef{}, false
		}
		if n := len(f.queue); n > 0 {
			ref := f.queue[n-1]
			f.queue = f.queue[:n-1]
			f.active++
			return ref, true
		}
		if f.active == 0 {
			// Nothing queued, nothing in flight, nobody seeding: done.
			f.closed = true
			f.cond.Broadcast()
			return model.PendingRef{}, false
		}
		f.cond.Wait()
	}
}

// begin marks a producer (the seeding loop) as active, keeping the walk
// alive while refs are still being discovered outside the workers.
func (f *frontier) begin() {
	f.mu.Lock()
	f.active++
	f.mu.Unlock()
}

// done marks one pop or begin as finished.
func (f *frontier) done() {
	f.mu.Lock()
	f.active--
	if f.active == 0 && len(f.queue) == 0 {
		f.cond.Broadcast()
	}
	f.mu.Unlock()
}

// close aborts the walk: blocked workers wake up and exit, later pushes are
// dropped. Used on fatal store failures and cancellation.
func (f *frontier) close() {
	f.mu.Lock()
	f.closed = true
	f.cond.Broadcast()
	f.mu.Unlock()
}
