package testutil

import (
	"bytes"
	"sync"

	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
	"github.com/vnykmshr/gopipe/pkg/pipe"
)

// pendingOp is an asynchronous write held by MockHandle until it is
// completed or canceled.
type pendingOp struct {
	data     []byte
	complete pipe.CompletionFunc
}

// MockHandle is a test destination handle that can simulate synchronous and
// asynchronous completions, partial writes, failures, and cancellation
// races. It also instruments concurrency: MaxInflight reports the largest
// number of simultaneously outstanding operations it ever observed.
type MockHandle struct {
	mu          sync.Mutex
	buf         bytes.Buffer
	maxChunk    int
	async       bool
	autoDone    bool
	failErr     error
	failOnNth   int
	writeCount  int
	inflight    int
	maxInflight int
	cancels     int
	pending     *pendingOp
}

// NewMockHandle creates a MockHandle that completes every write
// synchronously and accepts all offered bytes.
func NewMockHandle() *MockHandle {
	return &MockHandle{}
}

// SetMaxChunk limits the number of bytes accepted per write (0 = no limit).
func (h *MockHandle) SetMaxChunk(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maxChunk = n
}

// SetAsyncManual switches the handle to asynchronous completions that the
// test drives explicitly through CompletePending.
func (h *MockHandle) SetAsyncManual() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.async = true
	h.autoDone = false
}

// SetAsyncAuto switches the handle to asynchronous completions that finish
// on their own shortly after submission.
func (h *MockHandle) SetAsyncAuto() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.async = true
	h.autoDone = true
}

// FailWith makes every subsequent synchronous write fail with err.
func (h *MockHandle) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failErr = err
	h.failOnNth = 0
}

// FailOnNth makes the nth write (1-based, counted over the handle's
// lifetime) fail with err.
func (h *MockHandle) FailOnNth(n int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failErr = err
	h.failOnNth = n
}

// WriteAsync implements pipe.Handle.
func (h *MockHandle) WriteAsync(p []byte, complete pipe.CompletionFunc) (int, bool, error) {
	h.mu.Lock()
	h.writeCount++
	h.inflight++
	if h.inflight > h.maxInflight {
		h.maxInflight = h.inflight
	}

	if h.failErr != nil && (h.failOnNth == 0 || h.writeCount == h.failOnNth) {
		err := h.failErr
		h.inflight--
		h.mu.Unlock()
		return 0, false, err
	}

	n := len(p)
	if h.maxChunk > 0 && n > h.maxChunk {
		n = h.maxChunk
	}

	if h.async {
		data := make([]byte, n)
		copy(data, p[:n])
		h.pending = &pendingOp{data: data, complete: complete}
		auto := h.autoDone
		h.mu.Unlock()
		if auto {
			go h.CompletePending(nil)
		}
		return 0, true, nil
	}

	h.buf.Write(p[:n])
	h.inflight--
	h.mu.Unlock()
	return n, false, nil
}

// CancelWrite implements pipe.Handle. The canceled operation delivers its
// completion on a separate goroutine, as a real handle would.
func (h *MockHandle) CancelWrite() error {
	h.mu.Lock()
	op := h.pending
	if op == nil {
		h.mu.Unlock()
		return gperrors.ErrOperationNotFound
	}
	h.pending = nil
	h.cancels++
	h.inflight--
	h.mu.Unlock()

	go op.complete(0, gperrors.ErrOperationCanceled)
	return nil
}

// CompletePending finishes the outstanding asynchronous operation. With a
// nil error the buffered bytes are accepted; otherwise the operation fails
// with err. Returns false if nothing was outstanding. The completion
// callback runs on the caller's goroutine.
func (h *MockHandle) CompletePending(err error) bool {
	h.mu.Lock()
	op := h.pending
	if op == nil {
		h.mu.Unlock()
		return false
	}
	h.pending = nil
	h.inflight--

	n := 0
	if err == nil {
		h.buf.Write(op.data)
		n = len(op.data)
	}
	h.mu.Unlock()

	op.complete(n, err)
	return true
}

// HasPending returns true if an asynchronous operation is outstanding.
func (h *MockHandle) HasPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending != nil
}

// String returns the bytes accepted so far.
func (h *MockHandle) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.String()
}

// Len returns the number of bytes accepted so far.
func (h *MockHandle) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Len()
}

// WriteCount returns the number of WriteAsync calls.
func (h *MockHandle) WriteCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeCount
}

// Cancels returns the number of honored cancellation requests.
func (h *MockHandle) Cancels() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancels
}

// MaxInflight returns the largest number of simultaneously outstanding
// operations observed.
func (h *MockHandle) MaxInflight() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxInflight
}

// ManualExecutor is a pipe.Executor that collects posted functions and runs
// them only when the test asks, making notification scheduling observable.
type ManualExecutor struct {
	mu  sync.Mutex
	fns []func()
}

// NewManualExecutor creates an empty ManualExecutor.
func NewManualExecutor() *ManualExecutor {
	return &ManualExecutor{}
}

// Post implements pipe.Executor.
func (e *ManualExecutor) Post(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fns = append(e.fns, fn)
}

// Pending returns the number of scheduled, not yet run, functions.
func (e *ManualExecutor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.fns)
}

// RunAll runs every scheduled function in submission order and returns how
// many ran.
func (e *ManualExecutor) RunAll() int {
	e.mu.Lock()
	fns := e.fns
	e.fns = nil
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
