package interfaces

import domaintypes "relaychat/internal/domain/types"

// ProfileStore persists per-relay account profiles for the CLI.
type ProfileStore interface {
	SaveProfile(passphrase string, profile domaintypes.AccountProfile) error
	LoadProfile(passphrase string, relayURL string) (domaintypes.AccountProfile, bool, error)
}
