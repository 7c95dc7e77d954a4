package archive_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"twarchive/internal/archive"
	"twarchive/internal/model"
	"twarchive/internal/testutil"
)

func TestMediaResolver_ResolveURL_embeddedBlob(t *testing.T) {
	e := newEnv(t, nil, 1)
	data := []byte("jpeg bytes")
	e.dl.Files["https://pbs.example/a.jpg"] = data

	digest, err := e.media.ResolveURL(context.Background(), "https://pbs.example/a.jpg", archive.Owner{Kind: model.KindTweet, ID: 100})
	if err != nil {
		t.Fatalf("ResolveURL() error = %v", err)
	}
	if want := testutil.SHA512Hex(data); digest != want {
		t.Errorf("digest = %s, want %s", digest, want)
	}

	blob, err := e.store.GetMediaBlob(context.Background(), digest)
	if err != nil {
		t.Fatalf("GetMediaBlob() error = %v", err)
	}
	if !bytes.Equal(blob, data) {
		t.Errorf("stored blob = %q, want %q", blob, data)
	}
}

func TestMediaResolver_ResolveURL_externalBlobStore(t *testing.T) {
	blobs := testutil.NewTestBlobStore()
	e := newEnv(t, blobs, 1)
	data := []byte("jpeg bytes")
	e.dl.Files["https://pbs.example/a.jpg"] = data

	digest, err := e.media.ResolveURL(context.Background(), "https://pbs.example/a.jpg", archive.Owner{Kind: model.KindTweet, ID: 100})
	if err != nil {
		t.Fatalf("ResolveURL() error = %v", err)
	}

	// Bytes live in the blob store; the row carries no payload.
	stored, err := e.store.GetMediaBlob(context.Background(), digest)
	if err != nil {
		t.Fatalf("GetMediaBlob() error = %v", err)
	}
	if stored != nil {
		t.Errorf("row blob = %q, want nil", stored)
	}

	exists, err := blobs.Exists(digest)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("blob store has no object for the digest")
	}
}

func TestMediaResolver_sharedBytesDeduplicated(t *testing.T) {
	e := newEnv(t, nil, 1)
	data := []byte("the same bytes")
	e.dl.Files["https://pbs.example/a.jpg"] = data
	e.dl.Files["https://pbs.example/b.jpg"] = data

	d1, err := e.media.ResolveURL(context.Background(), "https://pbs.example/a.jpg", archive.Owner{Kind: model.KindTweet, ID: 100})
	if err != nil {
		t.Fatalf("first ResolveURL() error = %v", err)
	}
	d2, err := e.media.ResolveURL(context.Background(), "https://pbs.example/b.jpg", archive.Owner{Kind: model.KindUser, ID: 1})
	if err != nil {
		t.Fatalf("second ResolveURL() error = %v", err)
	}

	if d1 != d2 {
		t.Errorf("digests differ: %s vs %s", d1, d2)
	}

	snap := e.counters.Snapshot()
	if snap.Archived != 1 {
		t.Errorf("Archived = %d, want 1", snap.Archived)
	}
	if snap.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", snap.Skipped)
	}
}

func TestMediaResolver_downloadFailureIsTerminalForAsset(t *testing.T) {
	e := newEnv(t, nil, 1)
	e.dl.Errs["https://pbs.example/gone.jpg"] = errors.New("403")

	digest, err := e.media.ResolveURL(context.Background(), "https://pbs.example/gone.jpg", archive.Owner{Kind: model.KindTweet, ID: 100})
	if err != nil {
		t.Fatalf("ResolveURL() error = %v, want nil (asset failure is not fatal)", err)
	}
	if digest != "" {
		t.Errorf("digest = %q, want empty", digest)
	}
	if snap := e.counters.Snapshot(); snap.Failed != 1 {
		t.Errorf("Failed = %d, want 1", snap.Failed)
	}
}

func TestMediaResolver_tweetPersistsDespiteMediaFailure(t *testing.T) {
	e := newEnv(t, nil, 1)
	alice := rawUser(1, "alice")
	alt := "broken photo"
	tw := rawTweet(100, alice)
	tw.Media = []model.RawMedia{{Kind: model.MediaPhoto, FullURL: "https://pbs.example/gone.jpg", AltText: &alt}}
	e.dl.Errs["https://pbs.example/gone.jpg"] = errors.New("404")

	if _, err := e.resolver.ResolveTweet(context.Background(), tw, false); err != nil {
		t.Fatalf("ResolveTweet() error = %v", err)
	}

	mustTweetExists(t, e, 100)
	if snap := e.counters.Snapshot(); snap.Failed != 1 {
		t.Errorf("Failed = %d, want 1", snap.Failed)
	}
}

func TestMediaResolver_Resolve_playlistTranscoded(t *testing.T) {
	e := newEnv(t, nil, 1)
	data := []byte("mp4 bytes")
	url := "https://video.example/playlist.m3u8"
	e.tc.Files[url] = data

	m := model.RawMedia{
		Kind:     model.MediaVideo,
		Variants: []model.MediaVariant{{URL: url, ContentType: "application/x-mpegURL"}},
	}

	digest, err := e.media.Resolve(context.Background(), &m, archive.Owner{Kind: model.KindTweet, ID: 100})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := testutil.SHA512Hex(data); digest != want {
		t.Errorf("digest = %s, want %s", digest, want)
	}
	if len(e.tc.Calls) != 1 {
		t.Errorf("transcoder called %d times, want 1", len(e.tc.Calls))
	}
	if len(e.dl.Calls) != 0 {
		t.Errorf("downloader called %d times, want 0: %v", len(e.dl.Calls), e.dl.Calls)
	}
}

func TestMediaResolver_Resolve_videoThumbnail(t *testing.T) {
	e := newEnv(t, nil, 1)
	videoData := []byte("mp4 bytes")
	thumbData := []byte("thumb bytes")
	e.dl.Files["https://video.example/v.mp4"] = videoData
	e.dl.Files["https://pbs.example/thumb.jpg"] = thumbData

	m := model.RawMedia{
		Kind:         model.MediaVideo,
		Variants:     []model.MediaVariant{{URL: "https://video.example/v.mp4", Bitrate: 832000}},
		ThumbnailURL: "https://pbs.example/thumb.jpg",
	}

	digest, err := e.media.Resolve(context.Background(), &m, archive.Owner{Kind: model.KindTweet, ID: 100})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := testutil.SHA512Hex(videoData); digest != want {
		t.Errorf("digest = %s, want the video digest %s", digest, want)
	}

	exists, err := e.store.MediaExists(context.Background(), testutil.SHA512Hex(thumbData))
	if err != nil {
		t.Fatalf("MediaExists() error = %v", err)
	}
	if !exists {
		t.Error("thumbnail not archived")
	}
}

func TestMediaResolver_Resolve_noUsableURL(t *testing.T) {
	e := newEnv(t, nil, 1)

	m := model.RawMedia{Kind: model.MediaVideo} // no variants
	digest, err := e.media.Resolve(context.Background(), &m, archive.Owner{Kind: model.KindTweet, ID: 100})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if digest != "" {
		t.Errorf("digest = %q, want empty", digest)
	}
	if len(e.dl.Calls)+len(e.tc.Calls) != 0 {
		t.Error("collaborators called for an attachment without a URL")
	}
}
