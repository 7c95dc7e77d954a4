package archive

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"twarchive/internal/model"
)

func ref(id int64) model.PendingRef {
	return model.PendingRef{Kind: model.KindTweet, ID: id}
}

func TestFrontier_PushPop(t *testing.T) {
	f := newFrontier()
	f.push(ref(1), ref(2), ref(3))

	seen := map[int64]bool{}
	for i := 0; i < 3; i++ {
		r, ok := f.pop()
		if !ok {
			t.Fatalf("pop() ok = false after %d pops, want a ref", i)
		}
		seen[r.ID] = true
		f.done()
	}
	if len(seen) != 3 {
		t.Errorf("got %d distinct refs, want 3", len(seen))
	}

	// Queue drained, nothing in flight: the next pop finishes the walk.
	if _, ok := f.pop(); ok {
		t.Error("pop() ok = true on empty finished frontier, want false")
	}
}

func TestFrontier_PendingWorkKeepsPopBlocked(t *testing.T) {
	f := newFrontier()
	f.push(ref(1))

	r, ok := f.pop()
	if !ok || r.ID != 1 {
		t.Fatalf("pop() = %v, %v, want ref 1", r, ok)
	}

	// A second consumer must wait: the in-flight ref may still push more.
	var got atomic.Int64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if r, ok := f.pop(); ok {
			got.Store(r.ID)
			f.done()
		}
	}()

	time.Sleep(10 * time.Millisecond)
	if got.Load() != 0 {
		t.Fatal("pop() returned before the in-flight ref finished")
	}

	f.push(ref(2))
	f.done()
	wg.Wait()

	if got.Load() != 2 {
		t.Errorf("blocked pop() got ref %d, want 2", got.Load())
	}
}

func TestFrontier_CloseWakesWorkers(t *testing.T) {
	f := newFrontier()
	f.begin() // keep the walk alive so pop blocks

	done := make(chan bool)
	go func() {
		_, ok := f.pop()
		done <- ok
	}()

	f.close()

	select {
	case ok := <-done:
		if ok {
			t.Error("pop() ok = true after close, want false")
		}
	case <-time.After(time.Second):
		t.Fatal("pop() still blocked after close")
	}
}

func TestFrontier_PushAfterCloseDropped(t *testing.T) {
	f := newFrontier()
	f.close()
	f.push(ref(1))

	if _, ok := f.pop(); ok {
		t.Error("pop() returned a ref pushed after close")
	}
}

func TestFrontier_BeginKeepsWalkAlive(t *testing.T) {
	f := newFrontier()
	f.begin()

	popped := make(chan bool)
	go func() {
		_, ok := f.pop()
		popped <- ok
	}()

	// The producer is still seeding: the worker must not exit yet.
	select {
	case <-popped:
		t.Fatal("pop() returned while a producer was still active")
	case <-time.After(10 * time.Millisecond):
	}

	f.push(ref(7))
	f.done()

	select {
	case ok := <-popped:
		if !ok {
			t.Error("pop() ok = false, want the seeded ref")
		}
	case <-time.After(time.Second):
		t.Fatal("pop() still blocked after seeding finished")
	}
}
