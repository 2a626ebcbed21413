package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"relaychat/internal/domain"
)

const profilesFile = "profiles.enc"

// ProfileFileStore persists per-relay account profiles in one sealed file.
type ProfileFileStore struct {
	dir    string
	params scryptParams
	mu     sync.Mutex
}

// NewProfileFileStore returns a ProfileFileStore rooted at dir.
func NewProfileFileStore(dir string) *ProfileFileStore {
	return &ProfileFileStore{dir: dir, params: defaultScryptParams()}
}

// SaveProfile stores or replaces the profile for profile.RelayURL.
func (s *ProfileFileStore) SaveProfile(passphrase string, profile domain.AccountProfile) error {
	if profile.RelayURL == "" {
		return fmt.Errorf("save profile: %w: relay url is required", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load(passphrase)
	if err != nil {
		return err
	}
	profiles[profileKey(profile.RelayURL)] = profile

	raw, err := json.Marshal(profiles)
	if err != nil {
		return err
	}
	sealed, err := seal(passphrase, raw, s.params)
	if err != nil {
		return err
	}
	return writeFile(s.path(), sealed, 0o600)
}

// LoadProfile retrieves the profile for relayURL.
func (s *ProfileFileStore) LoadProfile(
	passphrase string,
	relayURL string,
) (domain.AccountProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load(passphrase)
	if err != nil {
		return domain.AccountProfile{}, false, err
	}
	p, ok := profiles[profileKey(relayURL)]
	return p, ok, nil
}

func (s *ProfileFileStore) load(passphrase string) (map[string]domain.AccountProfile, error) {
	profiles := make(map[string]domain.AccountProfile)
	b, err := readFile(s.path())
	if err != nil {
		return nil, err
	}
	if b == nil { // file didn't exist
		return profiles, nil
	}
	raw, err := open(passphrase, b)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

func (s *ProfileFileStore) path() string { return filepath.Join(s.dir, profilesFile) }

func profileKey(relayURL string) string { return strings.TrimRight(relayURL, "/") }

// Compile-time assertion that ProfileFileStore implements domain.ProfileStore.
var _ domain.ProfileStore = (*ProfileFileStore)(nil)
