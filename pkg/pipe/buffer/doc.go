/*
Package buffer provides the chunked FIFO byte queue backing the pipe writer.

The buffer accepts appends at the tail and exposes the contiguous run of
bytes at the head so a single I/O call can be issued without copying.
Consumed bytes are removed from the head only in the amount the destination
actually accepted, so bytes are never reordered or lost.

The buffer is not safe for concurrent use; the owning writer serializes all
access under its own lock.
*/
package buffer
