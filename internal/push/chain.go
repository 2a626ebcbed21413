package push

import (
	"context"
	"errors"

	"relaychat/internal/domain"
)

// Chain tries each pusher in order until one has a route to the client.
type Chain []domain.Pusher

// TryDeliver returns the result of the first pusher that does not report
// domain.ErrNoRoute, or domain.ErrNoRoute when none has a route.
func (c Chain) TryDeliver(ctx context.Context, client domain.Client, msg domain.Message) error {
	for _, p := range c {
		err := p.TryDeliver(ctx, client, msg)
		if errors.Is(err, domain.ErrNoRoute) {
			continue
		}
		return err
	}
	return domain.ErrNoRoute
}

var _ domain.Pusher = Chain(nil)
