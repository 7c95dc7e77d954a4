package testutil

import (
	"context"
	"fmt"
	"sync"

	"twarchive/internal/archive"
)

// FakeDownloader serves scripted bytes by URL. URLs not in Files fail with
// an error, as do URLs listed in Errs. Safe for concurrent use.
type FakeDownloader struct {
	mu    sync.Mutex
	Files map[string][]byte
	Errs  map[string]error

	Calls []string
}

var _ archive.Downloader = (*FakeDownloader)(nil)

func NewFakeDownloader() *FakeDownloader {
	return &FakeDownloader{
		Files: map[string][]byte{},
		Errs:  map[string]error{},
	}
}

func (d *FakeDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, url)
	if err, ok := d.Errs[url]; ok {
		return nil, err
	}
	if data, ok := d.Files[url]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("download %s: no scripted response", url)
}

// FakeTranscoder serves scripted bytes by playlist URL.
type FakeTranscoder struct {
	mu    sync.Mutex
	Files map[string][]byte
	Errs  map[string]error

	Calls []string
}

var _ archive.Transcoder = (*FakeTranscoder)(nil)

func NewFakeTranscoder() *FakeTranscoder {
	return &FakeTranscoder{
		Files: map[string][]byte{},
		Errs:  map[string]error{},
	}
}

func (t *FakeTranscoder) Transcode(ctx context.Context, url string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls = append(t.Calls, url)
	if err, ok := t.Errs[url]; ok {
		return nil, err
	}
	if data, ok := t.Files[url]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("transcode %s: no scripted response", url)
}
