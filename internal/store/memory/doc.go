// Package memory holds the relay's in-process state: the client directory
// and the per-client delivery queues.
//
// Both types guard their maps with their own lock and are safe for
// concurrent use. Each mailbox additionally carries its own lock, so traffic
// for one client never waits on another. All state is lost on process exit.
package memory
