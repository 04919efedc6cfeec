package buffer

// DefaultChunkSize is the allocation unit for buffer storage.
const DefaultChunkSize = 4096

// Buffer is an ordered, growable FIFO byte queue. Bytes are appended at the
// tail and removed from the head. Storage is a list of fixed-size chunks so
// that consuming from the head never shifts remaining data.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	chunks    [][]byte
	head      int // read offset into chunks[0]
	size      int
	chunkSize int
}

// New creates an empty buffer with the default chunk size.
func New() *Buffer {
	return NewWithChunkSize(DefaultChunkSize)
}

// NewWithChunkSize creates an empty buffer allocating storage in chunks of
// the given size. Sizes below one fall back to the default.
func NewWithChunkSize(chunkSize int) *Buffer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Buffer{chunkSize: chunkSize}
}

// Size returns the number of buffered bytes.
func (b *Buffer) Size() int {
	return b.size
}

// IsEmpty returns true if no bytes are buffered.
func (b *Buffer) IsEmpty() bool {
	return b.size == 0
}

// Append adds p to the tail of the buffer. The bytes are copied; the caller
// may reuse p afterwards.
func (b *Buffer) Append(p []byte) {
	for len(p) > 0 {
		tail := b.tailChunk()
		n := copy(tail[len(tail):cap(tail)], p)
		b.chunks[len(b.chunks)-1] = tail[:len(tail)+n]
		b.size += n
		p = p[n:]
	}
}

// HeadRun returns the contiguous run of bytes at the head of the buffer
// without copying. It returns nil when the buffer is empty. The returned
// slice is valid until the next call to Consume or Clear.
func (b *Buffer) HeadRun() []byte {
	if b.size == 0 {
		return nil
	}
	return b.chunks[0][b.head:]
}

// Consume removes n bytes from the head. n must not exceed Size.
func (b *Buffer) Consume(n int) {
	if n < 0 || n > b.size {
		panic("buffer: consume count out of range")
	}
	b.size -= n
	for n > 0 {
		run := len(b.chunks[0]) - b.head
		if n < run {
			b.head += n
			return
		}
		n -= run
		b.chunks[0] = nil
		b.chunks = b.chunks[1:]
		b.head = 0
	}
	if len(b.chunks) == 0 {
		b.chunks = nil
	}
}

// Clear drops all buffered bytes.
func (b *Buffer) Clear() {
	b.chunks = nil
	b.head = 0
	b.size = 0
}

// tailChunk returns the current tail chunk, allocating a new one if the
// buffer is empty or the tail is full.
func (b *Buffer) tailChunk() []byte {
	if len(b.chunks) > 0 {
		tail := b.chunks[len(b.chunks)-1]
		if len(tail) < cap(tail) {
			return tail
		}
	}
	chunk := make([]byte, 0, b.chunkSize)
	b.chunks = append(b.chunks, chunk)
	return chunk
}
