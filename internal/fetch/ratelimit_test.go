package fetch

import (
	"context"
	"testing"

	"twarchive/internal/archive"
	"twarchive/internal/config"
	"twarchive/internal/model"
)

type countingFetcher struct {
	searches      int
	fetches       int
	conversations int
}

func (f *countingFetcher) SearchByAccount(ctx context.Context, handle string) (archive.TweetCursor, error) {
	f.searches++
	return nil, nil
}

func (f *countingFetcher) FetchByID(ctx context.Context, id int64) (*model.RawTweet, error) {
	f.fetches++
	return &model.RawTweet{ID: id}, nil
}

func (f *countingFetcher) SearchByConversation(ctx context.Context, conversationID int64) (archive.TweetCursor, error) {
	f.conversations++
	return nil, nil
}

func TestNewRateLimitedFetcher_ZeroRatePassesThrough(t *testing.T) {
	t.Parallel()

	inner := &countingFetcher{}
	f := NewRateLimitedFetcher(inner, config.FetchConfig{})
	if f != archive.Fetcher(inner) {
		t.Errorf("NewRateLimitedFetcher() with zero rate = %T, want the inner fetcher", f)
	}
}

func TestRateLimitedFetcher_DelegatesAllOps(t *testing.T) {
	t.Parallel()

	inner := &countingFetcher{}
	f := NewRateLimitedFetcher(inner, config.FetchConfig{RatePerSec: 1000, Burst: 10})

	ctx := context.Background()
	if _, err := f.SearchByAccount(ctx, "alice"); err != nil {
		t.Fatalf("SearchByAccount() error = %v", err)
	}
	if _, err := f.FetchByID(ctx, 7); err != nil {
		t.Fatalf("FetchByID() error = %v", err)
	}
	if _, err := f.SearchByConversation(ctx, 9); err != nil {
		t.Fatalf("SearchByConversation() error = %v", err)
	}

	if inner.searches != 1 || inner.fetches != 1 || inner.conversations != 1 {
		t.Errorf("inner calls = %d/%d/%d, want 1/1/1", inner.searches, inner.fetches, inner.conversations)
	}
}

func TestRateLimitedFetcher_CancelledContext(t *testing.T) {
	t.Parallel()

	inner := &countingFetcher{}
	// Burst 1 with a slow rate: the second call has to wait and should
	// observe the cancelled context.
	f := NewRateLimitedFetcher(inner, config.FetchConfig{RatePerSec: 0.001, Burst: 1})

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := f.FetchByID(ctx, 1); err != nil {
		t.Fatalf("first FetchByID() error = %v", err)
	}

	cancel()
	if _, err := f.FetchByID(ctx, 2); err == nil {
		t.Error("FetchByID() expected error after context cancel")
	}
	if inner.fetches != 1 {
		t.Errorf("inner fetches = %d, want 1", inner.fetches)
	}
}
