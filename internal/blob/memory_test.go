package blob

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestMemoryStore_PutGet(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	content := "some media bytes"
	if err := store.Put("digest-1", strings.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	var buf bytes.Buffer
	if err := store.Get("digest-1", &buf); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if buf.String() != content {
		t.Errorf("Get() = %q, want %q", buf.String(), content)
	}
}

func TestMemoryStore_PutSizeMismatch(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	err := store.Put("digest-1", strings.NewReader("short"), 100)
	if err == nil {
		t.Error("Put() with wrong size should return error")
	}
}

func TestMemoryStore_PutIdempotent(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	content := "same bytes"
	for i := 0; i < 2; i++ {
		if err := store.Put("digest-1", strings.NewReader(content), int64(len(content))); err != nil {
			t.Fatalf("Put() #%d error = %v", i+1, err)
		}
	}

	exists, err := store.Exists("digest-1")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() = false after Put")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	var buf bytes.Buffer
	if err := store.Get("nope", &buf); err == nil {
		t.Error("Get() for missing digest should return error")
	}
}

func TestMemoryStore_ExistsMissing(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	exists, err := store.Exists("nope")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true for missing digest")
	}
}

func TestMemoryStore_ConcurrentPut(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	content := "raced bytes"
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Put("digest-1", strings.NewReader(content), int64(len(content))); err != nil {
				t.Errorf("Put() error = %v", err)
			}
		}()
	}
	wg.Wait()

	var buf bytes.Buffer
	if err := store.Get("digest-1", &buf); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if buf.String() != content {
		t.Errorf("Get() = %q, want %q", buf.String(), content)
	}
}
