package indexing

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var EntriesWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "indexdb",
	Subsystem: "index",
	Name:      "entries_written_total",
}, []string{"index"})

var StaleRepaired = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "indexdb",
	Subsystem: "query",
	Name:      "stale_repaired_total",
}, []string{"index"})

var HitsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "indexdb",
	Subsystem: "query",
	Name:      "skipped_total",
}, []string{"index", "reason"})

var QueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "indexdb",
	Subsystem: "query",
	Name:      "duration_seconds",
	Buckets:   prometheus.DefBuckets,
}, []string{"index", "mode"})

// RegisterMetrics registers the index collectors with reg. Collectors that
// are already registered are left alone.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{EntriesWritten, StaleRepaired, HitsSkipped, QueryDuration} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
