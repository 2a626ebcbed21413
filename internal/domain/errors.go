package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest reports a missing or empty required field.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidName reports a client name that cannot be registered.
	ErrInvalidName = fmt.Errorf("%w: invalid client name", ErrInvalidRequest)

	// ErrRecipientNotFound is returned by send when the recipient is not registered.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrClientNotFound is returned when a named client is not registered.
	ErrClientNotFound = errors.New("client not found")
	// ErrQueueNotFound is returned by queue operations on a name without a queue.
	ErrQueueNotFound = errors.New("delivery queue not found")

	// ErrUnreachable means a push could not reach the recipient. Router
	// falls back to the delivery queue.
	ErrUnreachable = errors.New("recipient unreachable")
	// ErrNoRoute means a transport has no way to reach the recipient and made
	// no attempt.
	ErrNoRoute = fmt.Errorf("%w: no push route", ErrUnreachable)
	// ErrRejected means the recipient was reached but refused the push.
	ErrRejected = errors.New("push rejected by recipient")
	// ErrStaleHandle is returned when a handle no longer matches the
	// directory entry for its name.
	ErrStaleHandle = errors.New("stale handle")

	// ErrRateLimited is returned when a sender exceeds its send rate.
	ErrRateLimited = errors.New("rate limited")
)
