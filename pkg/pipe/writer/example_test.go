package writer_test

import (
	"bytes"
	"context"
	"fmt"

	"github.com/vnykmshr/gopipe/pkg/pipe/handle"
	"github.com/vnykmshr/gopipe/pkg/pipe/writer"
)

func Example() {
	var sink bytes.Buffer
	h := handle.NewIOWriter(&sink)
	defer h.Close()

	w := writer.New(h)
	defer w.Stop()

	w.Write([]byte("hello "))
	w.Write([]byte("pipe"))

	ctx := context.Background()
	for w.BytesPending() > 0 {
		w.WaitForBytesWritten(ctx)
	}

	fmt.Println(sink.String())
	// Output: hello pipe
}

func Example_deferredBinding() {
	// Data can be enqueued before the destination channel exists.
	w := writer.New(nil)
	defer w.Stop()

	w.Write([]byte("buffered "))
	w.Write([]byte("early"))
	fmt.Println("pending before bind:", w.BytesPending())

	var sink bytes.Buffer
	h := handle.NewIOWriter(&sink)
	defer h.Close()

	w.BindHandle(h)

	ctx := context.Background()
	for w.BytesPending() > 0 {
		w.WaitForBytesWritten(ctx)
	}
	fmt.Println(sink.String())
	// Output:
	// pending before bind: 14
	// buffered early
}
