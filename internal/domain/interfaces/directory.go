package interfaces

import domaintypes "relaychat/internal/domain/types"

// ClientDirectory maps client names to delivery handles and is the source
// of truth for whether a name is registered.
type ClientDirectory interface {
	// Register creates or replaces the entry for name and makes sure an
	// empty delivery queue exists for it.
	Register(name domaintypes.Username, callback string) (domaintypes.Handle, error)
	Lookup(name domaintypes.Username) (domaintypes.Client, error)
	List() []domaintypes.Username
	// Search matches names case-insensitively by substring. An empty query
	// returns every name.
	Search(query string) []domaintypes.Username
	SetActive(name domaintypes.Username, active bool) error
}

// DeliveryQueue holds per-client FIFO mailboxes of pending messages.
type DeliveryQueue interface {
	Create(name domaintypes.Username)
	Exists(name domaintypes.Username) bool
	Enqueue(name domaintypes.Username, msg domaintypes.Message) error
	// DrainOne pops the head without blocking; ok is false when empty.
	DrainOne(name domaintypes.Username) (msg domaintypes.Message, ok bool, err error)
	// Restore puts msg back at the head of the queue.
	Restore(name domaintypes.Username, msg domaintypes.Message) error
	// Changed returns a channel closed by the next Enqueue or Restore.
	Changed(name domaintypes.Username) (<-chan struct{}, error)
	Len(name domaintypes.Username) (int, error)
}
