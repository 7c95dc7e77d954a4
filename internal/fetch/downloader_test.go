package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"twarchive/internal/config"
)

func TestHTTPDownloader_Download(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("media bytes"))
	}))
	defer srv.Close()

	d := NewHTTPDownloader(config.FetchConfig{})
	data, err := d.Download(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if string(data) != "media bytes" {
		t.Errorf("Download() = %q, want %q", data, "media bytes")
	}
}

func TestHTTPDownloader_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := NewHTTPDownloader(config.FetchConfig{})
	_, err := d.Download(context.Background(), srv.URL)
	if err == nil {
		t.Error("Download() expected error for 404 response")
	}
}

func TestHTTPDownloader_ContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewHTTPDownloader(config.FetchConfig{})
	_, err := d.Download(ctx, srv.URL)
	if err == nil {
		t.Error("Download() expected error for cancelled context")
	}
}
