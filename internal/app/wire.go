package app

import (
	"net/http"

	"relaychat/internal/domain"
	"relaychat/internal/relay"
	"relaychat/internal/store"
)

// Wire bundles the stores and clients for the CLI.
type Wire struct {
	Profiles domain.ProfileStore
	Relay    domain.RelayClient
	HTTP     *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	profiles := store.NewProfileFileStore(cfg.Home)

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Wire{
		Profiles: profiles,
		Relay:    relay.NewHTTP(cfg.RelayURL, httpClient),
		HTTP:     httpClient,
	}, nil
}
