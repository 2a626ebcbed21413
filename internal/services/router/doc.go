// Package router decides, for each send, whether a message is pushed
// directly to its recipient or parked in the recipient's delivery queue.
//
// A push is attempted exactly once and is bounded by a timeout. When the
// recipient cannot be reached the message falls back to the queue, where the
// recipient's stream picks it up. Inactive recipients have their messages
// dropped.
package router
