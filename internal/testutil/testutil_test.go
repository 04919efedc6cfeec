package testutil

import (
	"errors"
	"testing"

	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
)

func TestMockHandleSyncWrite(t *testing.T) {
	h := NewMockHandle()
	n, pending, err := h.WriteAsync([]byte("abc"), nil)
	AssertNoError(t, err)
	AssertEqual(t, pending, false)
	AssertEqual(t, n, 3)
	AssertEqual(t, h.String(), "abc")
	AssertEqual(t, h.WriteCount(), 1)
}

func TestMockHandleMaxChunk(t *testing.T) {
	h := NewMockHandle()
	h.SetMaxChunk(2)
	n, _, err := h.WriteAsync([]byte("abcdef"), nil)
	AssertNoError(t, err)
	AssertEqual(t, n, 2)
	AssertEqual(t, h.String(), "ab")
}

func TestMockHandleAsyncCompletion(t *testing.T) {
	h := NewMockHandle()
	h.SetAsyncManual()

	var gotN int
	var gotErr error
	_, pending, err := h.WriteAsync([]byte("xy"), func(n int, err error) {
		gotN, gotErr = n, err
	})
	AssertNoError(t, err)
	AssertEqual(t, pending, true)
	AssertEqual(t, h.HasPending(), true)

	AssertEqual(t, h.CompletePending(nil), true)
	AssertNoError(t, gotErr)
	AssertEqual(t, gotN, 2)
	AssertEqual(t, h.String(), "xy")

	// Nothing left to complete.
	AssertEqual(t, h.CompletePending(nil), false)
}

func TestMockHandleCancel(t *testing.T) {
	h := NewMockHandle()
	h.SetAsyncManual()

	done := make(chan error, 1)
	_, _, err := h.WriteAsync([]byte("zz"), func(_ int, err error) {
		done <- err
	})
	AssertNoError(t, err)

	AssertNoError(t, h.CancelWrite())
	if err := <-done; !errors.Is(err, gperrors.ErrOperationCanceled) {
		t.Fatalf("completion err = %v, want ErrOperationCanceled", err)
	}
	AssertEqual(t, h.Cancels(), 1)

	if err := h.CancelWrite(); !errors.Is(err, gperrors.ErrOperationNotFound) {
		t.Fatalf("second cancel err = %v, want ErrOperationNotFound", err)
	}
}

func TestManualExecutor(t *testing.T) {
	e := NewManualExecutor()
	var order []int
	e.Post(func() { order = append(order, 1) })
	e.Post(func() { order = append(order, 2) })
	AssertEqual(t, e.Pending(), 2)

	AssertEqual(t, e.RunAll(), 2)
	AssertEqual(t, e.Pending(), 0)
	AssertEqual(t, len(order), 2)
	AssertEqual(t, order[0], 1)
	AssertEqual(t, order[1], 2)
}
