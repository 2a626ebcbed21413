package types

import "time"

// Message is a relayed text message. It is immutable once created and is
// owned by exactly one queue entry at a time.
type Message struct {
	ID     MessageID `json:"id"`
	From   Username  `json:"from_user"`
	To     Username  `json:"to_user"`
	Body   string    `json:"message"`
	SentAt time.Time `json:"sent_at"`
}

// Event returns the wire record delivered to the recipient.
func (m Message) Event() Event {
	return Event{From: m.From, Message: m.Body}
}

// Event is the record streamed, pushed or posted to a recipient.
type Event struct {
	From    Username `json:"from_user"`
	Message string   `json:"message"`
}

// PushFrame is a websocket push: the event plus its message id.
type PushFrame struct {
	ID MessageID `json:"id"`
	Event
}

// Outcome is the result of routing one message.
type Outcome string

const (
	// OutcomeDelivered means the push reached the recipient.
	OutcomeDelivered Outcome = "delivered"
	// OutcomeQueuedFallback means the recipient was unreachable and the
	// message waits in its delivery queue.
	OutcomeQueuedFallback Outcome = "queued_fallback"
	// OutcomeDroppedInactive means the recipient is marked inactive.
	OutcomeDroppedInactive Outcome = "dropped_inactive"
	// OutcomeDropped means the recipient refused the push.
	OutcomeDropped Outcome = "dropped"
)

// String returns the string form of the outcome.
func (o Outcome) String() string { return string(o) }

// Summary is the human-readable status returned to senders.
func (o Outcome) Summary() string {
	switch o {
	case OutcomeDelivered:
		return "Message sent"
	case OutcomeQueuedFallback:
		return "Message queued"
	default:
		return "Message dropped"
	}
}

// Receipt is returned to the sender after routing.
type Receipt struct {
	ID      MessageID `json:"id"`
	Outcome Outcome   `json:"status"`
}
