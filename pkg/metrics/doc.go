/*
Package metrics provides Prometheus instrumentation for gopipe components.

A Registry holds the metric families for pipe writers. Components expose a
NewWithMetrics constructor that records into a Registry; see pkg/pipe/writer.

A Collector samples writer gauges (currently bytes pending) on a cron
schedule, so long-lived writers export up-to-date gauges without a
scrape-time callback:

	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)
	col, _ := metrics.NewCollector(reg, "@every 15s")
	col.Register("audit-log", w.BytesPending)
	col.Start()
	defer col.Stop()
*/
package metrics
