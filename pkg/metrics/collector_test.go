package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewCollectorInvalidSpec(t *testing.T) {
	reg := NewRegistry(prometheus.NewRegistry())
	if _, err := NewCollector(reg, "not a schedule"); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestCollectorSample(t *testing.T) {
	reg := NewRegistry(prometheus.NewRegistry())
	col, err := NewCollector(reg, "@every 1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending := int64(42)
	col.Register("test-writer", func() int64 { return pending })

	col.Sample()
	got := testutil.ToFloat64(reg.WriterBytesPending.WithLabelValues("test-writer"))
	if got != 42 {
		t.Errorf("bytes_pending = %v, want 42", got)
	}

	pending = 7
	col.Sample()
	got = testutil.ToFloat64(reg.WriterBytesPending.WithLabelValues("test-writer"))
	if got != 7 {
		t.Errorf("bytes_pending = %v, want 7", got)
	}
}

func TestCollectorUnregister(t *testing.T) {
	reg := NewRegistry(prometheus.NewRegistry())
	col, err := NewCollector(reg, "@every 1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	col.Register("gone", func() int64 { return 1 })
	col.Sample()
	col.Unregister("gone")

	// The gauge for the removed writer must be deleted, not frozen.
	n := testutil.CollectAndCount(reg.WriterBytesPending)
	if n != 0 {
		t.Errorf("expected 0 gauge series after Unregister, got %d", n)
	}
}

func TestCollectorStartStop(t *testing.T) {
	reg := NewRegistry(prometheus.NewRegistry())
	col, err := NewCollector(reg, "@every 1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	col.Start()
	col.Stop()
}
