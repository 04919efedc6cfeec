package writer

import (
	"context"
	"errors"
	"sync"

	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
	"github.com/vnykmshr/gopipe/pkg/common/validation"
	"github.com/vnykmshr/gopipe/pkg/pipe"
	"github.com/vnykmshr/gopipe/pkg/pipe/buffer"
)

// Stats holds a snapshot of writer activity.
type Stats struct {
	// BytesQueued is the total number of bytes accepted by Write.
	BytesQueued int64

	// BytesWritten is the total number of bytes the destination accepted.
	BytesWritten int64

	// WriteCalls is the total number of Write invocations.
	WriteCalls int64

	// SyncCompletions counts operations that completed synchronously.
	SyncCompletions int64

	// AsyncCompletions counts operations that completed asynchronously.
	AsyncCompletions int64

	// Notifications counts delivered bytes-written notifications.
	Notifications int64

	// CoalescedCompletions counts completion batches that were folded into
	// an already-scheduled notification.
	CoalescedCompletions int64

	// Cancellations counts in-flight operations canceled by Stop.
	Cancellations int64
}

// Config holds configuration options for Writer.
type Config struct {
	// ChunkSize is the allocation unit of the internal write buffer.
	// Default: buffer.DefaultChunkSize.
	ChunkSize int

	// Executor is the consumer's execution context for OnBytesWritten.
	// Default: pipe.GoExecutor.
	Executor pipe.Executor

	// OnBytesWritten receives the coalesced notification with the
	// cumulative number of bytes written. Called outside the writer's
	// lock; it may call back into the writer.
	OnBytesWritten func(total int64)

	// OnError is called once when the writer hits a non-benign terminal
	// failure. Orderly closures (peer closed, pipe closing, canceled) are
	// not reported.
	OnError func(err error)
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize: buffer.DefaultChunkSize,
		Executor:  pipe.GoExecutor{},
	}
}

// Writer is an asynchronous, cancellable byte-stream writer. It accepts
// writes before a destination handle is bound, issues at most one
// asynchronous operation at a time, and coalesces completions into a single
// notification per batch.
//
// Writer is safe for concurrent use. All shared state is guarded by a
// single mutex that is never held across a blocking call or a consumer
// callback.
type Writer struct {
	config Config

	mu     sync.Mutex
	handle pipe.Handle // nil until bound
	buf    *buffer.Buffer

	pendingBytesWritten int64 // written but not yet reported
	lastErr             error // sticky
	stopped             bool
	writeInProgress     bool
	bytesWrittenPending bool
	notifyPosted        bool
	stats               Stats

	inflight  sync.WaitGroup // outstanding completion callbacks
	syncEvent *event
}

// New creates a Writer with the default configuration. h may be nil, in
// which case writes are buffered until BindHandle is called.
func New(h pipe.Handle) *Writer {
	w, _ := NewWithConfig(h, DefaultConfig())
	return w
}

// NewWithConfig creates a Writer with the specified configuration. h may be
// nil to defer binding the destination handle.
func NewWithConfig(h pipe.Handle, config Config) (*Writer, error) {
	if config.ChunkSize == 0 {
		config.ChunkSize = buffer.DefaultChunkSize
	}
	if err := validation.ValidatePositive("writer", "chunk_size", config.ChunkSize); err != nil {
		return nil, err
	}
	if config.Executor == nil {
		config.Executor = pipe.GoExecutor{}
	}

	return &Writer{
		config:    config,
		handle:    h,
		buf:       buffer.NewWithChunkSize(config.ChunkSize),
		stopped:   true,
		syncEvent: newEvent(),
	}, nil
}

// Write appends p to the internal buffer and starts a write sequence if
// none is running. It never blocks on I/O. After a terminal error, Write is
// a silent no-op; use Err to check liveness.
func (w *Writer) Write(p []byte) {
	w.mu.Lock()

	if w.lastErr != nil {
		w.mu.Unlock()
		return
	}

	w.buf.Append(p)
	w.stats.WriteCalls++
	w.stats.BytesQueued += int64(len(p))

	if w.writeInProgress {
		w.mu.Unlock()
		return
	}

	w.stopped = false

	// If we don't have a handle yet, defer writing until BindHandle.
	if w.handle == nil {
		w.mu.Unlock()
		return
	}

	w.startWriteSequenceLocked()
}

// BindHandle attaches the destination handle. If data was buffered before
// the handle was known and the writer is not stopped, writing starts
// immediately.
func (w *Writer) BindHandle(h pipe.Handle) {
	w.mu.Lock()
	w.handle = h
	if h == nil || w.stopped || w.writeInProgress {
		w.mu.Unlock()
		return
	}
	w.startWriteSequenceLocked()
}

// BytesPending returns the number of buffered-but-unsent bytes plus bytes
// written but not yet reported to the consumer.
func (w *Writer) BytesPending() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(w.buf.Size()) + w.pendingBytesWritten
}

// Err returns the sticky terminal error, or nil while the writer is usable.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Stats returns a snapshot of writer activity.
func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Stop cancels the write sequence. If an operation is outstanding it is
// canceled at the handle level, and Stop blocks until its completion
// callback has fully settled, so resources may be torn down safely
// afterwards. Stop is idempotent. No notification fires after Stop returns.
func (w *Writer) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true

	var cancelErr error
	if w.writeInProgress {
		switch err := w.handle.CancelWrite(); {
		case err == nil:
			w.stats.Cancellations++
		case !errors.Is(err, gperrors.ErrOperationNotFound):
			// Not-found means the operation completed on its own;
			// anything else is worth reporting.
			cancelErr = err
		}
		w.writeInProgress = false
	}
	w.mu.Unlock()

	if cancelErr != nil && w.config.OnError != nil {
		w.config.OnError(cancelErr)
	}

	w.inflight.Wait()

	// Wake any blocked waiter; it observes the stopped state and returns.
	w.syncEvent.Set()
}

// WaitForBytesWritten blocks until a bytes-written notification has been
// delivered and returns true. The waiter delivers the batch in-line when it
// can; if the deferred callback gets there first during the wait, that
// still counts. It returns false if the writer is stopped or failed, if
// nothing is outstanding, or when ctx is done.
func (w *Writer) WaitForBytesWritten(ctx context.Context) bool {
	w.mu.Lock()
	seen := w.stats.Notifications
	w.mu.Unlock()

	for {
		if w.consumePendingAndDeliver(false) {
			return true
		}

		w.mu.Lock()
		delivered := w.stats.Notifications != seen
		// A completion can land between the consume attempt above and this
		// check; an undelivered batch means another pass, not idle.
		settled := w.stopped || w.lastErr != nil ||
			(!w.writeInProgress && w.buf.IsEmpty() && !w.bytesWrittenPending)
		w.mu.Unlock()
		if delivered {
			return true
		}
		if settled {
			return false
		}

		select {
		case <-w.syncEvent.Done():
		case <-ctx.Done():
			return false
		}
	}
}

// startWriteSequenceLocked issues writes from the buffer head until the
// buffer drains, an operation goes asynchronous, or a write fails. Entered
// with w.mu held; releases it before posting the coalesced notification or
// signaling the sync event.
func (w *Writer) startWriteSequenceLocked() {
	var failure error

	for w.lastErr == nil && !w.buf.IsEmpty() {
		run := w.buf.HeadRun()
		n, pending, err := w.handle.WriteAsync(run, w.onAsyncCompletion)
		if pending {
			// Operation has been queued and will complete later.
			w.writeInProgress = true
			w.inflight.Add(1)
			break
		}

		w.stats.SyncCompletions++
		if !w.writeCompletedLocked(n, err) {
			failure = err
			break
		}
	}

	// Do not schedule the notification if the write will complete
	// asynchronously; the completion path takes care of it.
	if !w.bytesWrittenPending {
		w.mu.Unlock()
		if failure != nil {
			w.syncEvent.Set()
			w.reportFailure(failure)
		}
		return
	}

	post := false
	if !w.notifyPosted {
		w.notifyPosted = true
		post = true
	} else {
		w.stats.CoalescedCompletions++
	}
	w.mu.Unlock()

	if post {
		w.config.Executor.Post(w.deliverPending)
	}

	// Set the event only after unlocking to avoid a released waiter
	// immediately running into the lock.
	w.syncEvent.Set()

	if failure != nil {
		w.reportFailure(failure)
	}
}

// onAsyncCompletion is the completion callback for operations that went
// asynchronous. It runs on a goroutine owned by the handle.
func (w *Writer) onAsyncCompletion(n int, err error) {
	defer w.inflight.Done()

	w.mu.Lock()

	// After the writer was stopped, the only reason this callback can run
	// is the completion of a cancellation. No notification may fire and no
	// new write sequence may start.
	if w.stopped {
		w.mu.Unlock()
		return
	}

	w.writeInProgress = false
	w.stats.AsyncCompletions++

	if w.writeCompletedLocked(n, err) {
		// Keep the pipe saturated from the completion goroutine instead
		// of bouncing back to the producer.
		w.startWriteSequenceLocked()
		return
	}

	w.mu.Unlock()

	// The write failed; unblock anyone waiting on the sync event.
	w.syncEvent.Set()
	w.reportFailure(err)
}

// writeCompletedLocked folds one completion result into the writer state.
// Returns true if the sequence may continue, false on terminal failure.
// Caller holds w.mu.
func (w *Writer) writeCompletedLocked(n int, err error) bool {
	if err == nil {
		w.bytesWrittenPending = true
		w.pendingBytesWritten += int64(n)
		w.stats.BytesWritten += int64(n)
		w.buf.Consume(n)
		return true
	}

	w.lastErr = err
	w.buf.Clear()
	return false
}

// deliverPending is the deferred notification callback posted to the
// consumer's Executor.
func (w *Writer) deliverPending() {
	w.consumePendingAndDeliver(true)
}

// consumePendingAndDeliver snapshots and clears the pending batch and, if
// the writer has not been stopped meanwhile, invokes OnBytesWritten outside
// the lock. allowPosting re-arms the coalescer for the next batch. Returns
// true if a notification was delivered.
func (w *Writer) consumePendingAndDeliver(allowPosting bool) bool {
	// Only the in-line waiter re-arms the event. Resetting it from the
	// deferred path could swallow a wakeup a blocked waiter still needs.
	if !allowPosting {
		w.syncEvent.Reset()
	}
	w.mu.Lock()

	if allowPosting {
		w.notifyPosted = false
	}

	if !w.bytesWrittenPending {
		w.mu.Unlock()
		return false
	}

	// Reset the state even when the notification is suppressed below; a
	// batch is consumed exactly once.
	w.bytesWrittenPending = false
	w.pendingBytesWritten = 0
	total := w.stats.BytesWritten
	stopped := w.stopped
	if !stopped {
		w.stats.Notifications++
	}
	w.mu.Unlock()

	if stopped {
		return false
	}

	if w.config.OnBytesWritten != nil {
		w.config.OnBytesWritten(total)
	}
	return true
}

func (w *Writer) reportFailure(err error) {
	if err == nil || gperrors.IsBenignClose(err) {
		return
	}
	if w.config.OnError != nil {
		w.config.OnError(err)
	}
}
