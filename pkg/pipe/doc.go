/*
Package pipe defines the contracts between the asynchronous pipe writer and
the destination channel it writes to.

A Handle is the writable end of a unidirectional byte channel. It accepts one
write at a time; a write either completes synchronously or becomes an
outstanding asynchronous operation whose result is delivered later through a
CompletionFunc on an unspecified goroutine.

An Executor is the consumer's execution context. The writer posts coalesced
bytes-written notifications to it instead of calling the consumer from its
internal goroutines.

Concrete Handle providers live in pkg/pipe/handle; the writer itself lives in
pkg/pipe/writer.
*/
package pipe
