// Package stream exposes a client's delivery queue as a long-lived pull
// stream.
//
// A Stream hands out queued messages one at a time in arrival order. When
// the queue is empty it parks until the next enqueue wakes it, falling back
// to a fixed poll interval, and returns as soon as the caller's context is
// cancelled. Messages not yet drained stay queued for the next stream.
package stream
