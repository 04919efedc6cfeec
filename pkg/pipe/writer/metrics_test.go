package writer

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/gopipe/internal/testutil"
	"github.com/vnykmshr/gopipe/pkg/metrics"
)

var errTestSink = errors.New("sink exploded")

func TestMetricsWriterCounters(t *testing.T) {
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	h := testutil.NewMockHandle()
	h.SetMaxChunk(2)
	exec := testutil.NewManualExecutor()

	cfg := DefaultConfig()
	cfg.Executor = exec
	mw, err := NewWithMetricsRegistry(h, cfg, "test", reg)
	testutil.AssertNoError(t, err)

	mw.Write([]byte("abcd"))
	exec.RunAll()

	assertCounter := func(name string, c prometheus.Counter, want float64) {
		t.Helper()
		if got := promtestutil.ToFloat64(c); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	assertCounter("writes_total", reg.WriterWrites.WithLabelValues("test"), 1)
	assertCounter("bytes_queued_total", reg.WriterBytesQueued.WithLabelValues("test"), 4)
	assertCounter("bytes_written_total", reg.WriterBytesWritten.WithLabelValues("test"), 4)
	assertCounter("completions sync", reg.WriterCompletions.WithLabelValues("test", "sync"), 2)
	assertCounter("completions async", reg.WriterCompletions.WithLabelValues("test", "async"), 0)
	assertCounter("notifications_total", reg.WriterNotifications.WithLabelValues("test"), 1)
}

func TestMetricsWriterErrorCounter(t *testing.T) {
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	h := testutil.NewMockHandle()
	h.FailWith(errTestSink)

	cfg := DefaultConfig()
	cfg.Executor = testutil.NewManualExecutor()
	mw, err := NewWithMetricsRegistry(h, cfg, "failing", reg)
	testutil.AssertNoError(t, err)

	mw.Write([]byte("boom"))
	mw.Stop()

	if got := promtestutil.ToFloat64(reg.WriterErrors.WithLabelValues("failing")); got != 1 {
		t.Errorf("errors_total = %v, want 1", got)
	}
}

func TestMetricsWriterCancellationCounter(t *testing.T) {
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	h := testutil.NewMockHandle()
	h.SetAsyncManual()

	cfg := DefaultConfig()
	cfg.Executor = testutil.NewManualExecutor()
	mw, err := NewWithMetricsRegistry(h, cfg, "stopped", reg)
	testutil.AssertNoError(t, err)

	mw.Write([]byte("inflight"))
	mw.Stop()

	if got := promtestutil.ToFloat64(reg.WriterCancellations.WithLabelValues("stopped")); got != 1 {
		t.Errorf("cancellations_total = %v, want 1", got)
	}
}

func TestMetricsWriterPreservesCallbacks(t *testing.T) {
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	h := testutil.NewMockHandle()
	exec := testutil.NewManualExecutor()

	var total int64
	cfg := DefaultConfig()
	cfg.Executor = exec
	cfg.OnBytesWritten = func(n int64) { total = n }
	mw, err := NewWithMetricsRegistry(h, cfg, "cb", reg)
	testutil.AssertNoError(t, err)

	mw.Write([]byte("xyz"))
	exec.RunAll()

	testutil.AssertEqual(t, total, int64(3))
	testutil.AssertEqual(t, mw.Name(), "cb")
}
