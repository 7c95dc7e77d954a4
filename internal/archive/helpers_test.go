package archive_test

import (
	"context"
	"testing"
	"time"

	"twarchive/internal/archive"
	"twarchive/internal/model"
	"twarchive/internal/testutil"
)

// env bundles a fully wired walker over an in-memory store and scripted
// collaborators.
type env struct {
	store    archive.Store
	fetcher  *testutil.FakeFetcher
	dl       *testutil.FakeDownloader
	tc       *testutil.FakeTranscoder
	counters *archive.Counters
	media    *archive.MediaResolver
	resolver *archive.EntityResolver
	walker   *archive.Walker
}

func newEnv(t *testing.T, blobs archive.BlobStore, workers int) *env {
	t.Helper()

	e := &env{
		store:    testutil.NewTestStore(t),
		fetcher:  testutil.NewFakeFetcher(),
		dl:       testutil.NewFakeDownloader(),
		tc:       testutil.NewFakeTranscoder(),
		counters: archive.NewCounters(),
	}
	log := archive.NewNopLogger()
	e.media = archive.NewMediaResolver(e.store, blobs, e.dl, e.tc, log, e.counters)
	e.resolver = archive.NewEntityResolver(e.store, e.media, e.fetcher, log, e.counters)
	e.walker = archive.NewWalker(e.store, e.fetcher, e.resolver, log, e.counters, workers)
	return e
}

func rawUser(id int64, username string) model.RawUser {
	return model.RawUser{
		ID:          id,
		Username:    username,
		DisplayName: username,
		CreatedAt:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		AccountURL:  "https://twitter.com/" + username,
	}
}

func rawTweet(id int64, user model.RawUser) *model.RawTweet {
	return &model.RawTweet{
		ID:             id,
		Content:        "tweet content",
		CreatedAt:      time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		ConversationID: id,
		Language:       "en",
		User:           user,
	}
}

func mustTweetExists(t *testing.T, e *env, id int64) {
	t.Helper()
	exists, err := e.store.TweetExists(context.Background(), id)
	if err != nil {
		t.Fatalf("TweetExists(%d) error = %v", id, err)
	}
	if !exists {
		t.Errorf("tweet %d not archived", id)
	}
}

func mustUserExists(t *testing.T, e *env, id int64) {
	t.Helper()
	exists, err := e.store.UserExists(context.Background(), id)
	if err != nil {
		t.Fatalf("UserExists(%d) error = %v", id, err)
	}
	if !exists {
		t.Errorf("user %d not archived", id)
	}
}
