// Package push implements the relay's direct delivery transports.
//
// A Pusher makes at most one delivery attempt per call. Transports report
// domain.ErrNoRoute when they have no way to reach the client, so a Chain
// can move on to the next transport without a second real attempt; any
// other domain.ErrUnreachable means the attempt was made and failed.
//
//   - Hub delivers over websocket connections attached by live clients.
//   - Webhook POSTs events to the callback URL given at registration,
//     guarded by a circuit breaker per callback.
package push
