package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ItemsArchived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twarchive_items_archived_total",
		Help: "Entities persisted for the first time",
	}, []string{"kind"})
	ItemsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twarchive_items_skipped_total",
		Help: "Entities found already archived",
	}, []string{"kind"})
	ItemsMissing = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twarchive_items_missing_total",
		Help: "Refs reported deleted or unavailable upstream",
	})
	ItemsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twarchive_items_failed_total",
		Help: "Refs or media abandoned after a transient fetch failure",
	})
	FetchCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twarchive_fetch_calls_total",
		Help: "Calls to the lookup collaborator",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(ItemsArchived, ItemsSkipped, ItemsMissing, ItemsFailed, FetchCalls)
}

// Logger is the subset of the application logger the listener reports
// its failures through.
type Logger interface {
	Error(msg string, args ...any)
}

// StartServer exposes /metrics and /health on addr. Empty addr disables the
// listener. The server runs in the background; a bind failure is logged,
// not returned, because the archive run can proceed without it.
func StartServer(addr string, log Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics listener failed", "addr", addr, "error", err)
		}
	}()
}
