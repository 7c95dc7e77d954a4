package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"twarchive/internal/archive"
	"twarchive/internal/config"
)

// HTTPDownloader fetches media bytes over plain HTTP GET.
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader creates a downloader. A zero timeout means requests are
// bounded only by the caller's context.
func NewHTTPDownloader(cfg config.FetchConfig) *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Download retrieves the bytes at url.
func (d *HTTPDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}
	return data, nil
}

// Compile-time check that HTTPDownloader implements the Downloader interface
var _ archive.Downloader = (*HTTPDownloader)(nil)
