// Package relay provides an HTTP implementation of the domain.RelayClient
// interface used by the relaychat CLI.
//
// Supported operations include:
//   - Registering a client name, optionally with a push callback URL.
//   - Sending a message to another client.
//   - Listing, searching and validating registered names.
//   - Toggling whether a client accepts pushes.
//   - Reading a client's queued messages as a Server-Sent Events stream.
//   - Attaching a websocket to receive pushed messages directly.
//
// All requests accept a context for cancellation and deadlines. Non-2xx
// responses are returned as *StatusError values that unwrap to the matching
// domain sentinel, so callers can use errors.Is.
package relay
