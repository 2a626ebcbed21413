package interfaces

import (
	"context"

	domaintypes "relaychat/internal/domain/types"
)

// Pusher reaches a live client directly. Implementations make at most one
// delivery attempt per call and report ErrUnreachable (or ErrNoRoute) when
// the client cannot be reached.
type Pusher interface {
	TryDeliver(ctx context.Context, client domaintypes.Client, msg domaintypes.Message) error
}
