package metrics

import (
	"net"
	"sync"
	"testing"
	"time"
)

// captureLogger records Error calls. Safe for concurrent use.
type captureLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *captureLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *captureLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

func TestStartServer_emptyAddrDisabled(t *testing.T) {
	log := &captureLogger{}
	StartServer("", log)

	time.Sleep(20 * time.Millisecond)
	if n := log.count(); n != 0 {
		t.Errorf("logged %d errors for a disabled listener, want 0", n)
	}
}

func TestStartServer_bindFailureLogged(t *testing.T) {
	// Occupy a port so the listener cannot bind to it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	log := &captureLogger{}
	StartServer(ln.Addr().String(), log)

	deadline := time.Now().Add(2 * time.Second)
	for log.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("bind failure never logged")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
