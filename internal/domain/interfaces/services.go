package interfaces

import (
	"context"

	domaintypes "relaychat/internal/domain/types"
)

// ClientService registers clients and answers directory queries.
type ClientService interface {
	Register(ctx context.Context, name domaintypes.Username, callback string) (domaintypes.Registration, error)
	Lookup(name domaintypes.Username) (domaintypes.Client, error)
	List() []domaintypes.Username
	Search(query string) []domaintypes.Username
	Validate(name domaintypes.Username) error
	SetActive(ctx context.Context, name domaintypes.Username, active bool) error
}

// MessageRouter pushes a message to its recipient or queues it.
type MessageRouter interface {
	Send(
		ctx context.Context,
		from domaintypes.Username,
		to domaintypes.Username,
		body string,
	) (domaintypes.Receipt, error)
}

// StreamService opens long-lived pull streams over delivery queues.
type StreamService interface {
	Open(name domaintypes.Username) (MessageStream, error)
}

// MessageStream yields a client's queued messages in arrival order.
type MessageStream interface {
	// Next blocks until a message is available or ctx is done.
	Next(ctx context.Context) (domaintypes.Message, error)
	// Restore requeues a message that could not be handed downstream.
	Restore(msg domaintypes.Message) error
	Close()
}
