//go:build linux

package handle

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
	"github.com/vnykmshr/gopipe/pkg/pipe"
)

// fdOp is one deferred write parked until the descriptor becomes writable.
type fdOp struct {
	data     []byte
	complete pipe.CompletionFunc
	canceled bool
}

// FileHandle writes to a nonblocking file descriptor. While the kernel
// buffer has room, writes complete synchronously; when it fills up
// (EAGAIN), the operation goes asynchronous and a goroutine parks in
// poll(2) until the descriptor is writable again or the operation is
// canceled through a self-pipe wakeup.
//
// The descriptor is referenced, not owned: Close releases only the
// handle's wakeup pipe.
type FileHandle struct {
	fd int

	mu  sync.Mutex
	cur *fdOp

	wakeR, wakeW int
	closeOnce    sync.Once
}

// NewFile creates a handle for fd, switching it to nonblocking mode.
func NewFile(fd int) (*FileHandle, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("set nonblock: %w", err)
	}

	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("wakeup pipe: %w", err)
	}

	return &FileHandle{fd: fd, wakeR: p[0], wakeW: p[1]}, nil
}

// WriteAsync implements pipe.Handle.
func (h *FileHandle) WriteAsync(p []byte, complete pipe.CompletionFunc) (int, bool, error) {
	h.mu.Lock()
	if h.cur != nil {
		h.mu.Unlock()
		return 0, false, gperrors.ErrWriteInProgress
	}
	h.mu.Unlock()

	n, err := unix.Write(h.fd, p)
	if n > 0 {
		// Partial acceptance is a synchronous completion; the writer
		// resubmits the remainder.
		return n, false, nil
	}
	if err != nil && err != unix.EAGAIN {
		return 0, false, mapUnixError(err)
	}

	op := &fdOp{
		data:     make([]byte, len(p)),
		complete: complete,
	}
	copy(op.data, p)

	h.mu.Lock()
	h.cur = op
	h.mu.Unlock()

	go h.waitWritable(op)
	return 0, true, nil
}

// CancelWrite implements pipe.Handle. It wakes the polling goroutine,
// which delivers the completion with ErrOperationCanceled.
func (h *FileHandle) CancelWrite() error {
	h.mu.Lock()
	op := h.cur
	if op == nil || op.canceled {
		h.mu.Unlock()
		return gperrors.ErrOperationNotFound
	}
	op.canceled = true
	h.mu.Unlock()

	// Poke the self-pipe; a full pipe already guarantees a wakeup.
	_, _ = unix.Write(h.wakeW, []byte{0})
	return nil
}

// Close releases the handle's wakeup pipe. Cancel any outstanding write
// first (the pipe writer's Stop does this).
func (h *FileHandle) Close() error {
	h.closeOnce.Do(func() {
		_ = unix.Close(h.wakeR)
		_ = unix.Close(h.wakeW)
	})
	return nil
}

// waitWritable parks in poll(2) until the destination accepts the deferred
// write or the operation is canceled.
func (h *FileHandle) waitWritable(op *fdOp) {
	for {
		fds := []unix.PollFd{
			{Fd: int32(h.fd), Events: unix.POLLOUT},
			{Fd: int32(h.wakeR), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			h.finish(op, 0, fmt.Errorf("poll: %w", err))
			return
		}

		if h.drainWake(op) {
			h.finish(op, 0, gperrors.ErrOperationCanceled)
			return
		}

		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP) != 0 {
			h.finish(op, 0, gperrors.ErrPeerClosed)
			return
		}

		n, err := unix.Write(h.fd, op.data)
		if n > 0 {
			h.finish(op, n, nil)
			return
		}
		if err != nil && err != unix.EAGAIN {
			h.finish(op, 0, mapUnixError(err))
			return
		}
		// Spurious wakeup; park again.
	}
}

// drainWake empties the wakeup pipe and reports whether op was canceled.
func (h *FileHandle) drainWake(op *fdOp) bool {
	var buf [16]byte
	for {
		if _, err := unix.Read(h.wakeR, buf[:]); err != nil {
			break
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return op.canceled
}

func (h *FileHandle) finish(op *fdOp, n int, err error) {
	h.mu.Lock()
	h.cur = nil
	h.mu.Unlock()
	op.complete(n, err)
}

// mapUnixError translates errnos that represent an orderly remote close
// into the library's benign-closure sentinels.
func mapUnixError(err error) error {
	switch err {
	case unix.EPIPE, unix.ECONNRESET:
		return gperrors.ErrPeerClosed
	case unix.EBADF:
		return gperrors.ErrPipeClosing
	default:
		return fmt.Errorf("write: %w", err)
	}
}
