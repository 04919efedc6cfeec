/*
Package gopipe provides an asynchronous, cancellable byte-stream writer
for unidirectional pipe-like channels.

Pipe Writer (pkg/pipe):
  - writer: Non-blocking buffered writer with single-in-flight asynchronous
    I/O and coalesced bytes-written notifications
  - buffer: Chunked FIFO byte queue backing the writer
  - handle: Destination handle providers (io.Writer adapter, nonblocking
    linux file descriptors, Redis-backed streams)

Observability (pkg/metrics):
  - Prometheus instrumentation for writers
  - Cron-driven gauge sampling for long-lived writers

Example usage:

	import (
		"github.com/vnykmshr/gopipe/pkg/pipe/handle"
		"github.com/vnykmshr/gopipe/pkg/pipe/writer"
	)

	h := handle.NewIOWriter(conn)
	w := writer.New(h)
	defer w.Stop()

	w.Write([]byte("payload"))
	w.WaitForBytesWritten(ctx)
*/
package gopipe
