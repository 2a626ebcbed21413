package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"relaychat/internal/domain"
)

// InactivePolicy selects what a send to an inactive recipient reports.
type InactivePolicy string

const (
	// InactiveDrop drops the message and reports OutcomeDroppedInactive.
	InactiveDrop InactivePolicy = "drop"
	// InactiveNotFound drops the message and reports ErrRecipientNotFound.
	InactiveNotFound InactivePolicy = "not_found"
)

// DefaultPushTimeout bounds a push attempt when Config leaves it unset.
const DefaultPushTimeout = 2 * time.Second

// Config tunes the router.
type Config struct {
	PushTimeout    time.Duration
	InactivePolicy InactivePolicy
}

// Recorder receives routing measurements.
type Recorder interface {
	RecordSend(ctx context.Context, outcome domain.Outcome)
	RecordPush(ctx context.Context, elapsed time.Duration, err error)
}

// Service routes messages between registered clients.
type Service struct {
	directory domain.ClientDirectory
	queues    domain.DeliveryQueue
	pusher    domain.Pusher
	cfg       Config
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// New constructs a router. A nil pusher makes every active recipient
// unreachable, so all messages are queued; recorder and logger may be nil.
func New(
	directory domain.ClientDirectory,
	queues domain.DeliveryQueue,
	pusher domain.Pusher,
	cfg Config,
	recorder Recorder,
	logger *slog.Logger,
) *Service {
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = DefaultPushTimeout
	}
	if cfg.InactivePolicy == "" {
		cfg.InactivePolicy = InactiveDrop
	}
	if pusher == nil {
		pusher = noRoute{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		directory: directory,
		queues:    queues,
		pusher:    pusher,
		cfg:       cfg,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// Send routes body from one client to another.
//
//   - Any empty field fails with ErrInvalidRequest before the lookup.
//   - An unregistered recipient fails with ErrRecipientNotFound; nothing is queued.
//   - An inactive recipient has the message dropped.
//   - Otherwise one push is attempted; if the recipient is unreachable or
//     the push times out, the message is appended to its queue instead.
func (s *Service) Send(
	ctx context.Context,
	from domain.Username,
	to domain.Username,
	body string,
) (domain.Receipt, error) {
	if from == "" || to == "" || body == "" {
		return domain.Receipt{}, fmt.Errorf("%w: from, to and message are required", domain.ErrInvalidRequest)
	}

	client, err := s.directory.Lookup(to)
	if errors.Is(err, domain.ErrClientNotFound) {
		return domain.Receipt{}, fmt.Errorf("send to %q: %w", to, domain.ErrRecipientNotFound)
	}
	if err != nil {
		return domain.Receipt{}, err
	}

	msg := domain.Message{
		ID:     domain.MessageID(uuid.NewString()),
		From:   from,
		To:     to,
		Body:   body,
		SentAt: s.now(),
	}
	log := s.logger.With(
		slog.String("message_id", msg.ID.String()),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)

	if !client.Active {
		if s.cfg.InactivePolicy == InactiveNotFound {
			log.Debug("message_dropped_inactive", slog.String("policy", string(s.cfg.InactivePolicy)))
			return domain.Receipt{}, fmt.Errorf("send to %q: %w", to, domain.ErrRecipientNotFound)
		}
		log.Info("message_dropped_inactive")
		return s.receipt(ctx, msg, domain.OutcomeDroppedInactive), nil
	}

	pushCtx, cancel := context.WithTimeout(ctx, s.cfg.PushTimeout)
	start := time.Now()
	err = s.pusher.TryDeliver(pushCtx, client, msg)
	cancel()
	s.recorder.RecordPush(ctx, time.Since(start), err)

	switch {
	case err == nil:
		log.Debug("message_delivered")
		return s.receipt(ctx, msg, domain.OutcomeDelivered), nil

	case fallsBack(err):
		if qerr := s.queues.Enqueue(to, msg); qerr != nil {
			log.Error("message_queue_failed", slog.String("error", qerr.Error()))
			return domain.Receipt{}, fmt.Errorf("queue message for %q: %w", to, qerr)
		}
		log.Info("message_queued", slog.String("reason", err.Error()))
		return s.receipt(ctx, msg, domain.OutcomeQueuedFallback), nil

	default:
		log.Warn("push_rejected", slog.String("error", err.Error()))
		return s.receipt(ctx, msg, domain.OutcomeDropped), nil
	}
}

func (s *Service) receipt(ctx context.Context, msg domain.Message, outcome domain.Outcome) domain.Receipt {
	s.recorder.RecordSend(ctx, outcome)
	return domain.Receipt{ID: msg.ID, Outcome: outcome}
}

// fallsBack reports whether a push error degrades to queued delivery.
func fallsBack(err error) bool {
	return errors.Is(err, domain.ErrUnreachable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

type noRoute struct{}

func (noRoute) TryDeliver(context.Context, domain.Client, domain.Message) error {
	return domain.ErrNoRoute
}

type nopRecorder struct{}

func (nopRecorder) RecordSend(context.Context, domain.Outcome)       {}
func (nopRecorder) RecordPush(context.Context, time.Duration, error) {}

// Compile-time assertion that Service implements domain.MessageRouter.
var _ domain.MessageRouter = (*Service)(nil)
