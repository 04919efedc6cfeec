/*
Package writer provides an asynchronous, cancellable byte-stream writer for
unidirectional pipe-like channels.

Writer buffers producer data in memory, keeps exactly one write outstanding
against the destination handle, and coalesces completion bursts into a single
bytes-written notification per batch.

# Quick Start

	h := handle.NewIOWriter(conn)
	w := writer.New(h)
	defer w.Stop()

	w.Write([]byte("payload"))
	w.WaitForBytesWritten(context.Background())

# Deferred Handle Binding

Data may be enqueued before the destination exists. The writer holds it and
starts writing when the handle is bound:

	w := writer.New(nil)
	w.Write([]byte("early"))
	// ... channel established later ...
	w.BindHandle(h) // flushes the buffered bytes

# Notifications

Completions are coalesced: a burst of low-level completions produces at most
one notification per undelivered batch, carrying the cumulative number of
bytes written. The callback runs on the configured Executor, never while the
writer's lock is held, so it may safely call back into the writer:

	cfg := writer.DefaultConfig()
	cfg.OnBytesWritten = func(total int64) {
		log.Printf("%d bytes written so far", total)
	}
	w, _ := writer.NewWithConfig(h, cfg)

Consumers that block rather than poll can use WaitForBytesWritten, which
waits on the writer's sync event and delivers the pending notification
in-line.

# Errors

A write failure is sticky: the buffer is discarded and every later Write is a
silent no-op. Orderly closures (peer closed, pipe closing, canceled) end the
writer quietly; any other failure is reported through OnError. Check Err to
test liveness.

# Teardown

Stop cancels the outstanding operation, if any, and blocks until its
completion callback has fully settled. It is idempotent and safe to call from
the producer goroutine. No notification fires after Stop returns.
*/
package writer
