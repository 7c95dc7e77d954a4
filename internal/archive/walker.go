package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"twarchive/internal/model"
)

// Walker drives the closure walk for single accounts: it seeds the frontier
// from the account search and resolves refs across a bounded worker pool
// until no unresolved neighbor remains.
type Walker struct {
	store    Store
	fetcher  Fetcher
	resolver *EntityResolver
	log      Logger
	counters *Counters
	workers  int
}

func NewWalker(store Store, fetcher Fetcher, resolver *EntityResolver, log Logger, counters *Counters, workers int) *Walker {
	if workers < 1 {
		workers = 1
	}
	return &Walker{store: store, fetcher: fetcher, resolver: resolver, log: log, counters: counters, workers: workers}
}

// ArchiveAccount walks the closure reachable from handle's tweets.
// Termination holds because a ref that reaches a terminal state (persisted,
// missing upstream, or already archived) is never re-enqueued and the ID
// domain is finite per run; a cycle's second visit finds the first visit's
// row and stops. Only fatal store failures abort the walk; everything else
// is terminal for its own ref and counted.
func (w *Walker) ArchiveAccount(ctx context.Context, handle string) error {
	f := newFrontier()

	var once sync.Once
	var walkErr error
	fail := func(err error) {
		once.Do(func() {
			walkErr = err
			f.close()
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				ref, ok := f.pop()
				if !ok {
					return
				}
				if err := ctx.Err(); err != nil {
					f.done()
					fail(err)
					return
				}
				refs, err := w.resolveRef(ctx, ref)
				if err != nil {
					f.done()
					fail(fmt.Errorf("account %s: %w", handle, err))
					return
				}
				f.push(refs...)
				f.done()
			}
		}()
	}

	// Seed from the account search on this goroutine, streaming refs into
	// the pool as the search pages in.
	f.begin()
	if err := w.seed(ctx, handle, f); err != nil {
		fail(fmt.Errorf("seeding account %s: %w", handle, err))
	}
	f.done()

	wg.Wait()
	return walkErr
}

// seed pushes every tweet of the account search onto the frontier.
func (w *Walker) seed(ctx context.Context, handle string, f *frontier) error {
	cursor, err := w.fetcher.SearchByAccount(ctx, handle)
	if err != nil {
		return err
	}
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := cursor.Next(ctx)
		if errors.Is(err, io.EOF) {
			w.log.Info("account seeded", "account", handle, "tweets", n)
			return nil
		}
		if err != nil {
			return err
		}
		f.push(model.PendingRef{Kind: model.KindTweet, ID: t.ID, Raw: t, Seed: true})
		n++
	}
}

// resolveRef handles one frontier entry. The store is the source of truth
// for "already handled"; the check is repeated here because another worker
// may have archived the ID since the ref was enqueued. A non-nil error is a
// fatal store failure; everything recoverable is settled via counters.
func (w *Walker) resolveRef(ctx context.Context, ref model.PendingRef) ([]model.PendingRef, error) {
	exists, err := w.store.TweetExists(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		w.counters.Skipped(model.KindTweet)
		return nil, nil
	}

	raw := ref.Raw
	if raw == nil {
		raw, err = w.fetcher.FetchByID(ctx, ref.ID)
		if errors.Is(err, ErrNotFound) {
			w.log.Info("tweet gone upstream", "tweet", ref.ID)
			w.counters.Missing()
			return nil, nil
		}
		if err != nil {
			// Resolution is attempted at most once per ref; no retry.
			w.log.Info("tweet fetch failed", "tweet", ref.ID, "error", err)
			w.counters.Failed()
			return nil, nil
		}
	}

	return w.resolver.ResolveTweet(ctx, raw, ref.Seed)
}
