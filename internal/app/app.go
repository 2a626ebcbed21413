package app

import (
	"context"
	"errors"
	"fmt"

	"relaychat/internal/domain"
)

// ErrNoProfile is returned when the CLI needs a stored registration and
// there is none for the relay.
var ErrNoProfile = errors.New("no registration stored for this relay; run register first")

// App is the CLI's view of one relay account.
type App struct {
	Relay    domain.RelayClient
	Profiles domain.ProfileStore
	RelayURL string
}

// New returns an App for the relay at relayURL.
func New(relay domain.RelayClient, profiles domain.ProfileStore, relayURL string) *App {
	return &App{Relay: relay, Profiles: profiles, RelayURL: relayURL}
}

// Register registers name with the relay and remembers the registration.
func (a *App) Register(
	ctx context.Context,
	passphrase string,
	name domain.Username,
	callback string,
) (domain.Registration, error) {
	reg, err := a.Relay.Register(ctx, name, callback)
	if err != nil {
		return domain.Registration{}, err
	}
	profile := domain.AccountProfile{
		RelayURL:  a.RelayURL,
		Name:      name,
		HandleID:  reg.Handle,
		ClientURI: reg.ClientURI,
	}
	if err := a.Profiles.SaveProfile(passphrase, profile); err != nil {
		return reg, fmt.Errorf("registered, but saving the profile failed: %w", err)
	}
	return reg, nil
}

// Profile returns the stored registration for this relay.
func (a *App) Profile(passphrase string) (domain.AccountProfile, error) {
	p, ok, err := a.Profiles.LoadProfile(passphrase, a.RelayURL)
	if err != nil {
		return domain.AccountProfile{}, err
	}
	if !ok {
		return domain.AccountProfile{}, ErrNoProfile
	}
	return p, nil
}

// Identity resolves which client name to act as: explicit when set,
// otherwise the stored registration's name.
func (a *App) Identity(passphrase string, explicit domain.Username) (domain.Username, error) {
	if explicit != "" {
		return explicit, nil
	}
	p, err := a.Profile(passphrase)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}
