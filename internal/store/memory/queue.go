package memory

import (
	"sync"

	"relaychat/internal/domain"
)

// Queues holds one unbounded FIFO mailbox per registered client.
type Queues struct {
	mu        sync.RWMutex
	mailboxes map[domain.Username]*mailbox
}

type mailbox struct {
	mu      sync.Mutex
	msgs    []domain.Message
	changed chan struct{}
}

// NewQueues returns an empty queue set.
func NewQueues() *Queues {
	return &Queues{mailboxes: make(map[domain.Username]*mailbox)}
}

// Create makes sure a mailbox exists for name. Existing contents are kept.
func (q *Queues) Create(name domain.Username) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.mailboxes[name]; !ok {
		q.mailboxes[name] = &mailbox{changed: make(chan struct{})}
	}
}

// Exists reports whether a mailbox was created for name.
func (q *Queues) Exists(name domain.Username) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	_, ok := q.mailboxes[name]
	return ok
}

// Enqueue appends msg to the tail of name's mailbox and wakes waiters.
func (q *Queues) Enqueue(name domain.Username, msg domain.Message) error {
	mb, err := q.mailbox(name)
	if err != nil {
		return err
	}
	mb.mu.Lock()
	mb.msgs = append(mb.msgs, msg)
	mb.notifyLocked()
	mb.mu.Unlock()
	return nil
}

// DrainOne pops the head of name's mailbox. It never blocks.
func (q *Queues) DrainOne(name domain.Username) (domain.Message, bool, error) {
	mb, err := q.mailbox(name)
	if err != nil {
		return domain.Message{}, false, err
	}
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if len(mb.msgs) == 0 {
		return domain.Message{}, false, nil
	}
	msg := mb.msgs[0]
	mb.msgs[0] = domain.Message{}
	mb.msgs = mb.msgs[1:]
	if len(mb.msgs) == 0 {
		mb.msgs = nil
	}
	return msg, true, nil
}

// Restore puts msg back at the head of name's mailbox and wakes waiters.
func (q *Queues) Restore(name domain.Username, msg domain.Message) error {
	mb, err := q.mailbox(name)
	if err != nil {
		return err
	}
	mb.mu.Lock()
	mb.msgs = append([]domain.Message{msg}, mb.msgs...)
	mb.notifyLocked()
	mb.mu.Unlock()
	return nil
}

// Changed returns a channel that is closed by the next Enqueue or Restore
// on name. Callers fetch it before draining so no wakeup is missed.
func (q *Queues) Changed(name domain.Username) (<-chan struct{}, error) {
	mb, err := q.mailbox(name)
	if err != nil {
		return nil, err
	}
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.changed, nil
}

// Len returns the number of pending messages for name.
func (q *Queues) Len(name domain.Username) (int, error) {
	mb, err := q.mailbox(name)
	if err != nil {
		return 0, err
	}
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.msgs), nil
}

func (q *Queues) mailbox(name domain.Username) (*mailbox, error) {
	q.mu.RLock()
	mb, ok := q.mailboxes[name]
	q.mu.RUnlock()
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	return mb, nil
}

// notifyLocked wakes every waiter parked on the current channel.
func (mb *mailbox) notifyLocked() {
	close(mb.changed)
	mb.changed = make(chan struct{})
}

// Compile-time assertion that Queues implements domain.DeliveryQueue.
var _ domain.DeliveryQueue = (*Queues)(nil)
