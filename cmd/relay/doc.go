// Package main runs the relaychat relay server.
//
// HTTP API
//
//	POST /register                 {"name", "callback"?}
//	    Register or re-register a client. Returns its client URI, handle
//	    and fingerprint.
//
//	POST /send                     {"from", "to", "message"}
//	    Push the message to the recipient or queue it. Returns the
//	    outcome and message id.
//
//	GET /messages?client=NAME
//	    Stream queued and future messages as server-sent events.
//
//	GET  /clients
//	PUT  /clients/{name}/active    {"active"}
//	GET  /validate?username=NAME
//	GET  /search?query=Q
//	    Directory queries and the active flag.
//
//	GET /ws?client=NAME&handle=ID
//	    Attach a websocket push channel for a registered handle.
//
//	GET /health
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Configuration comes from an optional YAML file (--config); --addr
//     overrides server.addr.
//   - SIGINT or SIGTERM triggers a graceful shutdown that also ends open
//     message streams.
package main
