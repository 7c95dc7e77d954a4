package archive

import (
	"sync/atomic"
	"time"

	"twarchive/internal/metrics"
	"twarchive/internal/model"
)

// Counters aggregates walk outcomes across workers. All methods are safe
// for concurrent use; one instance is shared per run and read by the
// progress reporter and the run record.
type Counters struct {
	archived atomic.Int64
	skipped  atomic.Int64
	missing  atomic.Int64
	failed   atomic.Int64
}

func NewCounters() *Counters { return &Counters{} }

// Archived records an entity persisted for the first time.
func (c *Counters) Archived(kind model.Kind) {
	c.archived.Add(1)
	metrics.ItemsArchived.WithLabelValues(kind.String()).Inc()
}

// Skipped records an entity found already archived (existence check hit or
// an insert that lost a race).
func (c *Counters) Skipped(kind model.Kind) {
	c.skipped.Add(1)
	metrics.ItemsSkipped.WithLabelValues(kind.String()).Inc()
}

// Missing records a ref reported deleted or unavailable upstream.
func (c *Counters) Missing() {
	c.missing.Add(1)
	metrics.ItemsMissing.Inc()
}

// Failed records a ref or media abandoned after a transient failure.
func (c *Counters) Failed() {
	c.failed.Add(1)
	metrics.ItemsFailed.Inc()
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	Archived int64
	Skipped  int64
	Missing  int64
	Failed   int64
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Archived: c.archived.Load(),
		Skipped:  c.skipped.Load(),
		Missing:  c.missing.Load(),
		Failed:   c.failed.Load(),
	}
}

// Rates returns saves/sec, skips/sec and ops/sec over the given elapsed time.
func (s Snapshot) Rates(elapsed time.Duration) (saves, skips, ops float64) {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0, 0, 0
	}
	saves = float64(s.Archived) / secs
	skips = float64(s.Skipped) / secs
	ops = float64(s.Archived+s.Skipped) / secs
	return saves, skips, ops
}
