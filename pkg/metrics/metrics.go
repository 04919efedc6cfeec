// Package metrics provides Prometheus instrumentation for gopipe components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gopipe components.
type Registry struct {
	// Writer metrics
	WriterWrites        *prometheus.CounterVec
	WriterBytesQueued   *prometheus.CounterVec
	WriterBytesWritten  *prometheus.CounterVec
	WriterCompletions   *prometheus.CounterVec
	WriterNotifications *prometheus.CounterVec
	WriterCoalesced     *prometheus.CounterVec
	WriterErrors        *prometheus.CounterVec
	WriterCancellations *prometheus.CounterVec
	WriterBytesPending  *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by gopipe components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return newRegistry(reg, "gopipe")
}

// NewRegistryWithConfig creates a registry according to config. With
// Enabled false the instruments still exist but are not registered, so
// instrumented components keep working without exposing anything.
func NewRegistryWithConfig(config Config) *Registry {
	if config.Namespace == "" {
		config.Namespace = "gopipe"
	}
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if !config.Enabled {
		// promauto.With(nil) creates unregistered instruments.
		reg = nil
	}
	return newRegistry(reg, config.Namespace)
}

func newRegistry(reg prometheus.Registerer, namespace string) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		WriterWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "writes_total",
				Help:      "Total number of producer write calls",
			},
			[]string{"writer_name"},
		),

		WriterBytesQueued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "bytes_queued_total",
				Help:      "Total number of bytes accepted into the write buffer",
			},
			[]string{"writer_name"},
		),

		WriterBytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "bytes_written_total",
				Help:      "Total number of bytes accepted by the destination",
			},
			[]string{"writer_name"},
		),

		WriterCompletions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "completions_total",
				Help:      "Total number of write completions by mode",
			},
			[]string{"writer_name", "mode"},
		),

		WriterNotifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "notifications_total",
				Help:      "Total number of delivered bytes-written notifications",
			},
			[]string{"writer_name"},
		),

		WriterCoalesced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "coalesced_completions_total",
				Help:      "Total number of completion batches folded into an already-scheduled notification",
			},
			[]string{"writer_name"},
		),

		WriterErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "errors_total",
				Help:      "Total number of terminal write failures",
			},
			[]string{"writer_name"},
		),

		WriterCancellations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "cancellations_total",
				Help:      "Total number of in-flight operations canceled by Stop",
			},
			[]string{"writer_name"},
		),

		WriterBytesPending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "bytes_pending",
				Help:      "Buffered-but-unsent bytes plus bytes written but not yet reported",
			},
			[]string{"writer_name"},
		),
	}
}
