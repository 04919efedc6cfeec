package handle

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vnykmshr/gopipe/internal/testutil"
	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
)

// gateWriter blocks each Write until released, to hold an operation open.
type gateWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	gate chan struct{}
	err  error
}

func newGateWriter() *gateWriter {
	return &gateWriter{gate: make(chan struct{}, 16)}
}

func (g *gateWriter) release() { g.gate <- struct{}{} }

func (g *gateWriter) Write(p []byte) (int, error) {
	<-g.gate
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return 0, g.err
	}
	return g.buf.Write(p)
}

func (g *gateWriter) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buf.String()
}

type completion struct {
	n   int
	err error
}

func submit(t *testing.T, h *IOWriterHandle, data string) chan completion {
	t.Helper()
	done := make(chan completion, 1)
	_, pending, err := h.WriteAsync([]byte(data), func(n int, err error) {
		done <- completion{n, err}
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, pending, true)
	return done
}

func TestIOWriterCompletesAsync(t *testing.T) {
	g := newGateWriter()
	h := NewIOWriter(g)
	defer h.Close()

	done := submit(t, h, "abc")
	g.release()

	res := <-done
	testutil.AssertNoError(t, res.err)
	testutil.AssertEqual(t, res.n, 3)
	testutil.AssertEqual(t, g.String(), "abc")
}

func TestIOWriterSingleInFlight(t *testing.T) {
	g := newGateWriter()
	h := NewIOWriter(g)
	defer h.Close()

	done := submit(t, h, "first")

	// A second write while one is outstanding is a contract violation.
	_, _, err := h.WriteAsync([]byte("second"), func(int, error) {})
	if !errors.Is(err, gperrors.ErrWriteInProgress) {
		t.Fatalf("err = %v, want ErrWriteInProgress", err)
	}

	g.release()
	<-done

	// After completion the handle accepts writes again.
	done = submit(t, h, "second")
	g.release()
	<-done
	testutil.AssertEqual(t, g.String(), "firstsecond")
}

func TestIOWriterCancelLosesRaceWithRunningWrite(t *testing.T) {
	g := newGateWriter()
	h := NewIOWriter(g)
	defer h.Close()

	done := submit(t, h, "racing")

	// Give the worker time to start the write, then cancel.
	time.Sleep(10 * time.Millisecond)
	testutil.AssertNoError(t, h.CancelWrite())

	g.release()
	res := <-done

	// The write had already started; the natural result wins.
	testutil.AssertNoError(t, res.err)
	testutil.AssertEqual(t, res.n, 6)
}

func TestIOWriterCancelWithoutOperation(t *testing.T) {
	h := NewIOWriter(&bytes.Buffer{})
	defer h.Close()

	err := h.CancelWrite()
	if !errors.Is(err, gperrors.ErrOperationNotFound) {
		t.Fatalf("err = %v, want ErrOperationNotFound", err)
	}
}

func TestIOWriterPropagatesWriteError(t *testing.T) {
	g := newGateWriter()
	g.err = errors.New("sink failed")
	h := NewIOWriter(g)
	defer h.Close()

	done := submit(t, h, "data")
	g.release()

	res := <-done
	if !errors.Is(res.err, g.err) {
		t.Fatalf("err = %v, want %v", res.err, g.err)
	}
}

func TestIOWriterClosed(t *testing.T) {
	h := NewIOWriter(&bytes.Buffer{})
	testutil.AssertNoError(t, h.Close())

	_, _, err := h.WriteAsync([]byte("late"), func(int, error) {})
	if !errors.Is(err, gperrors.ErrPipeClosing) {
		t.Fatalf("err = %v, want ErrPipeClosing", err)
	}

	// Close is idempotent.
	testutil.AssertNoError(t, h.Close())
}
