package fetch

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"twarchive/internal/archive"
	"twarchive/internal/config"
	"twarchive/internal/metrics"
	"twarchive/internal/model"
)

// RateLimitedFetcher wraps another Fetcher and throttles upstream calls with
// a token bucket. All workers across all accounts share the one limiter, so
// the configured rate is a global ceiling.
type RateLimitedFetcher struct {
	inner   archive.Fetcher
	limiter *rate.Limiter
}

// NewRateLimitedFetcher wraps inner. A zero or negative rate returns inner
// unchanged.
func NewRateLimitedFetcher(inner archive.Fetcher, cfg config.FetchConfig) archive.Fetcher {
	if cfg.RatePerSec <= 0 {
		return inner
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst),
	}
}

func (f *RateLimitedFetcher) SearchByAccount(ctx context.Context, handle string) (archive.TweetCursor, error) {
	if err := f.wait(ctx, "search_account"); err != nil {
		return nil, err
	}
	return f.inner.SearchByAccount(ctx, handle)
}

func (f *RateLimitedFetcher) FetchByID(ctx context.Context, id int64) (*model.RawTweet, error) {
	if err := f.wait(ctx, "fetch_by_id"); err != nil {
		return nil, err
	}
	return f.inner.FetchByID(ctx, id)
}

func (f *RateLimitedFetcher) SearchByConversation(ctx context.Context, conversationID int64) (archive.TweetCursor, error) {
	if err := f.wait(ctx, "search_conversation"); err != nil {
		return nil, err
	}
	return f.inner.SearchByConversation(ctx, conversationID)
}

func (f *RateLimitedFetcher) wait(ctx context.Context, op string) error {
	metrics.FetchCalls.WithLabelValues(op).Inc()
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return nil
}

// Compile-time check that RateLimitedFetcher implements the Fetcher interface
var _ archive.Fetcher = (*RateLimitedFetcher)(nil)
