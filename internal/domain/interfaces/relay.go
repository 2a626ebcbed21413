package interfaces

import (
	"context"

	domaintypes "relaychat/internal/domain/types"
)

// RelayClient is how the CLI talks to the relay server, all with context.
type RelayClient interface {
	Register(ctx context.Context, name domaintypes.Username, callback string) (domaintypes.Registration, error)
	Send(
		ctx context.Context,
		from domaintypes.Username,
		to domaintypes.Username,
		body string,
	) (domaintypes.Receipt, error)
	Clients(ctx context.Context) ([]domaintypes.Username, error)
	Search(ctx context.Context, query string) ([]domaintypes.Username, error)
	Validate(ctx context.Context, name domaintypes.Username) error
	SetActive(ctx context.Context, name domaintypes.Username, active bool) error

	// Stream reads the client's event stream until ctx is done or fn
	// returns an error.
	Stream(ctx context.Context, name domaintypes.Username, fn func(domaintypes.Event) error) error
	// Attach opens the websocket push channel for a registered handle.
	Attach(ctx context.Context, name domaintypes.Username, handleID string, fn func(domaintypes.PushFrame) error) error
}
