package handle

import (
	"io"
	"sync"

	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
	"github.com/vnykmshr/gopipe/pkg/pipe"
)

// ioOp is one write handed to the worker goroutine.
type ioOp struct {
	data     []byte
	complete pipe.CompletionFunc
	canceled bool
}

// IOWriterHandle adapts an io.Writer into a pipe.Handle. Writes are
// executed on a dedicated worker goroutine, so every operation completes
// asynchronously and a slow destination never blocks the producer.
//
// A queued operation can be canceled before the worker picks it up; once
// the underlying Write has started it runs to completion and the
// cancellation loses the race, which callers treat as benign.
type IOWriterHandle struct {
	dst io.Writer

	mu     sync.Mutex
	cur    *ioOp
	closed bool

	reqCh     chan *ioOp
	done      chan struct{}
	closeOnce sync.Once
}

// NewIOWriter creates a handle writing to dst. dst must be non-nil. The
// handle owns a worker goroutine; release it with Close when done.
func NewIOWriter(dst io.Writer) *IOWriterHandle {
	h := &IOWriterHandle{
		dst:   dst,
		reqCh: make(chan *ioOp, 1),
		done:  make(chan struct{}),
	}
	go h.run()
	return h
}

// WriteAsync implements pipe.Handle.
func (h *IOWriterHandle) WriteAsync(p []byte, complete pipe.CompletionFunc) (int, bool, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return 0, false, gperrors.ErrPipeClosing
	}
	if h.cur != nil {
		h.mu.Unlock()
		return 0, false, gperrors.ErrWriteInProgress
	}

	op := &ioOp{
		data:     make([]byte, len(p)),
		complete: complete,
	}
	copy(op.data, p)
	h.cur = op
	h.mu.Unlock()

	// Single-in-flight plus the channel's slack guarantee this never
	// blocks.
	h.reqCh <- op
	return 0, true, nil
}

// CancelWrite implements pipe.Handle. A not-yet-started operation is
// dropped and completes with ErrOperationCanceled; an operation already
// being written finishes naturally.
func (h *IOWriterHandle) CancelWrite() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur == nil {
		return gperrors.ErrOperationNotFound
	}
	h.cur.canceled = true
	return nil
}

// Close shuts down the worker goroutine after the outstanding operation,
// if any, has settled. The underlying writer is not closed.
func (h *IOWriterHandle) Close() error {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()
		close(h.reqCh)
	})
	<-h.done
	return nil
}

func (h *IOWriterHandle) run() {
	defer close(h.done)

	for op := range h.reqCh {
		h.mu.Lock()
		if op.canceled {
			h.cur = nil
			h.mu.Unlock()
			op.complete(0, gperrors.ErrOperationCanceled)
			continue
		}
		h.mu.Unlock()

		n, err := h.dst.Write(op.data)

		h.mu.Lock()
		h.cur = nil
		h.mu.Unlock()

		// A cancellation that raced with the write lost; deliver the
		// natural result.
		op.complete(n, err)
	}
}
