package fetch

import (
	"twarchive/internal/archive"
	"twarchive/internal/config"
)

// NewFetcherFromConfig builds the scraper-backed Fetcher with the configured
// rate limit applied.
func NewFetcherFromConfig(cfg config.FetchConfig, log archive.Logger) archive.Fetcher {
	return NewRateLimitedFetcher(NewScraper(cfg, log), cfg)
}
