package archive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Archiver fans a run out over multiple accounts. Accounts run in groups of
// GroupSize to cap total parallelism; each account gets its own frontier and
// worker pool. A failing account never aborts the others: its error is
// collected and the rest of the run continues.
type Archiver struct {
	walker    *Walker
	log       Logger
	counters  *Counters
	clock     Clock
	groupSize int
	progress  time.Duration // 0 disables the periodic readout
}

func NewArchiver(walker *Walker, log Logger, counters *Counters, clock Clock, groupSize int, progress time.Duration) *Archiver {
	if groupSize < 1 {
		groupSize = 1
	}
	return &Archiver{
		walker:    walker,
		log:       log,
		counters:  counters,
		clock:     clock,
		groupSize: groupSize,
		progress:  progress,
	}
}

// Run archives every account and returns the joined per-account errors.
func (a *Archiver) Run(ctx context.Context, accounts []string) error {
	start := a.clock.Now()

	stopProgress := a.startProgress(start)
	defer stopProgress()

	var mu sync.Mutex
	var errs []error

	g := &errgroup.Group{}
	g.SetLimit(a.groupSize)
	for _, account := range accounts {
		g.Go(func() error {
			a.log.Info("archiving account", "account", account)
			if err := a.walker.ArchiveAccount(ctx, account); err != nil {
				a.log.Error("account walk aborted", "account", account, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil // isolation: other accounts keep running
			}
			a.log.Info("account archived", "account", account)
			return nil
		})
	}
	_ = g.Wait()

	snap := a.counters.Snapshot()
	saves, _, ops := snap.Rates(a.clock.Now().Sub(start))
	a.log.Info("run finished",
		"archived", snap.Archived,
		"skipped", snap.Skipped,
		"missing", snap.Missing,
		"failed", snap.Failed,
		"saves_per_sec", fmt.Sprintf("%.1f", saves),
		"ops_per_sec", fmt.Sprintf("%.1f", ops),
	)

	return errors.Join(errs...)
}

// startProgress launches the periodic stats readout and returns its stop
// function.
func (a *Archiver) startProgress(start time.Time) func() {
	if a.progress <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(a.progress)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				snap := a.counters.Snapshot()
				elapsed := a.clock.Now().Sub(start)
				saves, skips, ops := snap.Rates(elapsed)
				a.log.Info("progress",
					"elapsed", elapsed.Round(time.Second).String(),
					"archived", snap.Archived,
					"skipped", snap.Skipped,
					"missing", snap.Missing,
					"failed", snap.Failed,
					"saves_per_sec", fmt.Sprintf("%.1f", saves),
					"skips_per_sec", fmt.Sprintf("%.1f", skips),
					"ops_per_sec", fmt.Sprintf("%.1f", ops),
				)
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
