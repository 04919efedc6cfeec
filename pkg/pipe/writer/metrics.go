package writer

import (
	"sync"

	"github.com/vnykmshr/gopipe/pkg/metrics"
	"github.com/vnykmshr/gopipe/pkg/pipe"
)

// MetricsWriter wraps a Writer with Prometheus metrics collection.
type MetricsWriter struct {
	*Writer
	name     string
	registry *metrics.Registry

	mu   sync.Mutex
	last Stats // counters already pushed to the registry
}

// NewWithMetrics creates a writer that records activity into the default
// metrics registry under the given name.
func NewWithMetrics(h pipe.Handle, config Config, name string) (*MetricsWriter, error) {
	return NewWithMetricsRegistry(h, config, name, metrics.DefaultRegistry)
}

// NewWithMetricsRegistry creates a writer recording into a specific
// registry. The consumer's OnBytesWritten and OnError callbacks are
// preserved and invoked after the counters are updated.
func NewWithMetricsRegistry(h pipe.Handle, config Config, name string, registry *metrics.Registry) (*MetricsWriter, error) {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}

	mw := &MetricsWriter{name: name, registry: registry}

	userWritten := config.OnBytesWritten
	config.OnBytesWritten = func(total int64) {
		mw.syncCounters()
		if userWritten != nil {
			userWritten(total)
		}
	}

	userErr := config.OnError
	config.OnError = func(err error) {
		registry.WriterErrors.WithLabelValues(name).Inc()
		if userErr != nil {
			userErr(err)
		}
	}

	w, err := NewWithConfig(h, config)
	if err != nil {
		return nil, err
	}
	mw.Writer = w

	return mw, nil
}

// Name returns the writer's metric label.
func (mw *MetricsWriter) Name() string {
	return mw.name
}

// Write records the producer call and forwards to the wrapped writer.
func (mw *MetricsWriter) Write(p []byte) {
	mw.registry.WriterWrites.WithLabelValues(mw.name).Inc()
	mw.registry.WriterBytesQueued.WithLabelValues(mw.name).Add(float64(len(p)))
	mw.Writer.Write(p)
}

// Stop forwards to the wrapped writer and pushes any counters the last
// notification did not cover.
func (mw *MetricsWriter) Stop() {
	mw.Writer.Stop()
	mw.syncCounters()
}

// syncCounters pushes the delta between the writer's stats snapshot and the
// counters already recorded.
func (mw *MetricsWriter) syncCounters() {
	// Snapshot under mw.mu so concurrent calls cannot push overlapping
	// deltas (counter Add panics on negative values).
	mw.mu.Lock()
	now := mw.Writer.Stats()
	prev := mw.last
	mw.last = now
	mw.mu.Unlock()

	reg := mw.registry
	reg.WriterBytesWritten.WithLabelValues(mw.name).Add(float64(now.BytesWritten - prev.BytesWritten))
	reg.WriterCompletions.WithLabelValues(mw.name, "sync").Add(float64(now.SyncCompletions - prev.SyncCompletions))
	reg.WriterCompletions.WithLabelValues(mw.name, "async").Add(float64(now.AsyncCompletions - prev.AsyncCompletions))
	reg.WriterNotifications.WithLabelValues(mw.name).Add(float64(now.Notifications - prev.Notifications))
	reg.WriterCoalesced.WithLabelValues(mw.name).Add(float64(now.CoalescedCompletions - prev.CoalescedCompletions))
	reg.WriterCancellations.WithLabelValues(mw.name).Add(float64(now.Cancellations - prev.Cancellations))
}
