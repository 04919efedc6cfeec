package pipe

// CompletionFunc receives the result of an asynchronous write operation.
// It is invoked exactly once per pending operation, on an unspecified
// goroutine. n is the number of bytes the destination accepted; err is nil
// on success.
type CompletionFunc func(n int, err error)

// Handle is the writable end of a unidirectional byte channel.
//
// A Handle carries at most one outstanding write at a time; callers must not
// issue a second WriteAsync before the previous one has completed. This
// mirrors single-in-flight overlapped I/O and keeps cancellation
// unambiguous: CancelWrite always targets "the" outstanding operation.
type Handle interface {
	// WriteAsync issues a single write of p.
	//
	// Synchronous completion: pending is false and n holds the number of
	// bytes accepted (or err the immediate failure); complete is not called.
	//
	// Deferred completion: pending is true, n and err are meaningless, and
	// exactly one call to complete follows on an unspecified goroutine.
	//
	// The callee must not retain p after the operation has completed.
	WriteAsync(p []byte, complete CompletionFunc) (n int, pending bool, err error)

	// CancelWrite requests cancellation of the outstanding asynchronous
	// write, if any. It returns ErrOperationNotFound when no operation is
	// outstanding, which callers should treat as a benign race with a
	// natural completion. The canceled operation still delivers its
	// completion (with ErrOperationCanceled).
	CancelWrite() error
}

// Executor runs functions on the consumer's execution context, for example
// an event loop or a dedicated goroutine. Post must not block the caller and
// must run posted functions in submission order.
type Executor interface {
	Post(fn func())
}

// GoExecutor is the default Executor. It runs each posted function on a
// fresh goroutine. Submission order is preserved by the writer's own
// coalescing (at most one notification is scheduled at a time), so no
// queueing is needed here.
type GoExecutor struct{}

// Post implements Executor.
func (GoExecutor) Post(fn func()) {
	go fn()
}
