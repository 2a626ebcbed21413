// Package httpapi serves the relay over HTTP.
//
// Routes
//
//	POST /register              register or re-register a client
//	POST /send                  route a message
//	GET  /messages?client=      stream queued messages as Server-Sent Events
//	GET  /clients               list registered names
//	GET  /validate?username=    check that a name is registered
//	GET  /search?query=         search names by substring
//	PUT  /clients/:name/active  toggle push delivery
//	GET  /ws?client=&handle=    attach a websocket push channel
//	GET  /health                liveness
//
// Errors are JSON objects {"error": "...", "code": "..."} whose code tells
// callers apart invalid input, unknown names, stale handles and rate limits.
package httpapi
