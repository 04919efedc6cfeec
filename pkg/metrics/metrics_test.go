package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistryWithConfigNamespace(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewRegistryWithConfig(Config{
		Enabled:   true,
		Registry:  promReg,
		Namespace: "custom",
	})

	reg.WriterWrites.WithLabelValues("w").Inc()

	families, err := promReg.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "custom_writer_writes_total" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected custom_writer_writes_total in gathered families")
	}
}

func TestNewRegistryWithConfigDisabled(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewRegistryWithConfig(Config{
		Enabled:  false,
		Registry: promReg,
	})

	// Disabled metrics still accept updates but stay unregistered.
	reg.WriterWrites.WithLabelValues("w").Inc()

	families, err := promReg.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(families) != 0 {
		t.Errorf("expected no gathered families when disabled, got %d", len(families))
	}
}
