package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"relaychat/internal/crypto"
	"relaychat/internal/domain"
)

// Recorder counts registrations.
type Recorder interface {
	RecordRegistration(ctx context.Context)
}

// Service is the registration and lookup facade over a ClientDirectory.
type Service struct {
	directory domain.ClientDirectory
	recorder  Recorder
	logger    *slog.Logger
}

// New returns a client service; recorder and logger may be nil.
func New(directory domain.ClientDirectory, recorder Recorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{directory: directory, recorder: recorder, logger: logger}
}

// Register creates or replaces the directory entry for name. callback is an
// optional http(s) URL the relay may push messages to.
func (s *Service) Register(
	ctx context.Context,
	name domain.Username,
	callback string,
) (domain.Registration, error) {
	if err := validateCallback(callback); err != nil {
		return domain.Registration{}, err
	}
	handle, err := s.directory.Register(name, callback)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("register %q: %w", name, err)
	}

	fp := domain.Fingerprint(crypto.Fingerprint([]byte(handle.ID)))
	s.recorder.RecordRegistration(ctx)
	s.logger.Info("client_registered",
		slog.String("client", name.String()),
		slog.String("fingerprint", fp.String()),
		slog.Bool("callback", callback != ""),
	)

	return domain.Registration{
		ClientURI:   handle.URI(),
		Handle:      handle.ID,
		Fingerprint: fp,
	}, nil
}

// Lookup returns the directory entry for name.
func (s *Service) Lookup(name domain.Username) (domain.Client, error) {
	return s.directory.Lookup(name)
}

// List returns every registered name.
func (s *Service) List() []domain.Username { return s.directory.List() }

// Search returns registered names containing query, ignoring case.
func (s *Service) Search(query string) []domain.Username { return s.directory.Search(query) }

// Validate reports whether name is registered.
func (s *Service) Validate(name domain.Username) error {
	if name == "" {
		return fmt.Errorf("%w: username is required", domain.ErrInvalidRequest)
	}
	if _, err := s.directory.Lookup(name); err != nil {
		return fmt.Errorf("validate %q: %w", name, err)
	}
	return nil
}

// SetActive toggles push delivery for name.
func (s *Service) SetActive(ctx context.Context, name domain.Username, active bool) error {
	if err := s.directory.SetActive(name, active); err != nil {
		return fmt.Errorf("set active %q: %w", name, err)
	}
	s.logger.InfoContext(ctx, "client_active_changed",
		slog.String("client", name.String()),
		slog.Bool("active", active),
	)
	return nil
}

func validateCallback(callback string) error {
	if callback == "" {
		return nil
	}
	u, err := url.Parse(callback)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: callback must be an http(s) URL", domain.ErrInvalidRequest)
	}
	return nil
}

type nopRecorder struct{}

func (nopRecorder) RecordRegistration(context.Context) {}

// Compile-time assertion that Service implements domain.ClientService.
var _ domain.ClientService = (*Service)(nil)
