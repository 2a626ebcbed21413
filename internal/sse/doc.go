// Package sse reads and writes Server-Sent Events.
//
// See https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse
