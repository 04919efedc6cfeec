/*
Package handle provides concrete destination handles for the pipe writer.

Each handle implements pipe.Handle: one outstanding write at a time,
synchronous completion where the destination allows it, deferred completion
through a callback otherwise.

  - IOWriterHandle adapts any io.Writer; every write is handed to a
    dedicated worker goroutine and completes asynchronously.
  - FileHandle (linux) writes to a nonblocking file descriptor, completing
    synchronously while the kernel buffer has room and parking in poll(2)
    when it fills up.
  - RedisHandle appends the byte stream to a Redis key, one APPEND per
    write.

Handles reference their destination, they do not own it: closing the
underlying writer, descriptor, or client remains the caller's job.
*/
package handle
