package memory

import (
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"relaychat/internal/domain"
)

// MaxNameLength bounds the byte length of a client name.
const MaxNameLength = 64

// Directory is the in-memory client directory.
type Directory struct {
	mu      sync.RWMutex
	clients map[domain.Username]domain.Client
	queues  domain.DeliveryQueue
	now     func() time.Time
}

// NewDirectory returns an empty directory that creates mailboxes in queues
// as clients register.
func NewDirectory(queues domain.DeliveryQueue) *Directory {
	return &Directory{
		clients: make(map[domain.Username]domain.Client),
		queues:  queues,
		now:     time.Now,
	}
}

// Register creates or replaces the entry for name. A replaced entry gets a
// fresh handle and becomes active again; its queued messages are kept.
func (d *Directory) Register(name domain.Username, callback string) (domain.Handle, error) {
	if err := ValidateName(name); err != nil {
		return domain.Handle{}, err
	}
	handle := domain.Handle{
		ID:       uuid.NewString(),
		Name:     name,
		Callback: callback,
	}

	// The mailbox must exist before the entry is visible to senders.
	d.queues.Create(name)

	d.mu.Lock()
	d.clients[name] = domain.Client{
		Name:         name,
		Handle:       handle,
		Active:       true,
		RegisteredAt: d.now(),
	}
	d.mu.Unlock()
	return handle, nil
}

// Lookup returns the entry for name or domain.ErrClientNotFound.
func (d *Directory) Lookup(name domain.Username) (domain.Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.clients[name]
	if !ok {
		return domain.Client{}, domain.ErrClientNotFound
	}
	return c, nil
}

// List returns every registered name in ascending order.
func (d *Directory) List() []domain.Username {
	return d.Search("")
}

// Search returns the registered names containing query, ignoring case.
func (d *Directory) Search(query string) []domain.Username {
	q := strings.ToLower(query)

	d.mu.RLock()
	out := make([]domain.Username, 0, len(d.clients))
	for name := range d.clients {
		if q == "" || strings.Contains(strings.ToLower(string(name)), q) {
			out = append(out, name)
		}
	}
	d.mu.RUnlock()

	slices.Sort(out)
	return out
}

// SetActive toggles whether pushes are attempted for name.
func (d *Directory) SetActive(name domain.Username, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.clients[name]
	if !ok {
		return domain.ErrClientNotFound
	}
	c.Active = active
	d.clients[name] = c
	return nil
}

// ValidateName reports domain.ErrInvalidName for names that are empty,
// blank, too long or contain control characters.
func ValidateName(name domain.Username) error {
	s := string(name)
	if strings.TrimSpace(s) == "" || len(s) > MaxNameLength {
		return domain.ErrInvalidName
	}
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return domain.ErrInvalidName
	}
	return nil
}

// Compile-time assertion that Directory implements domain.ClientDirectory.
var _ domain.ClientDirectory = (*Directory)(nil)
