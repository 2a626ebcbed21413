package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"relaychat/internal/domain"
)

// DefaultPollInterval is how long an idle stream waits before re-checking
// its queue when no enqueue wakes it.
const DefaultPollInterval = time.Second

// ErrStreamClosed is returned by Next after Close.
var ErrStreamClosed = errors.New("stream closed")

// Config tunes streams.
type Config struct {
	PollInterval time.Duration
}

// Gauge tracks open streams.
type Gauge interface {
	StreamOpened(ctx context.Context)
	StreamClosed(ctx context.Context)
}

// Service opens streams over the delivery queues of registered clients.
type Service struct {
	directory domain.ClientDirectory
	queues    domain.DeliveryQueue
	cfg       Config
	gauge     Gauge
	logger    *slog.Logger
}

// New constructs a stream service; gauge and logger may be nil.
func New(
	directory domain.ClientDirectory,
	queues domain.DeliveryQueue,
	cfg Config,
	gauge Gauge,
	logger *slog.Logger,
) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if gauge == nil {
		gauge = nopGauge{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		directory: directory,
		queues:    queues,
		cfg:       cfg,
		gauge:     gauge,
		logger:    logger,
	}
}

// Open starts a stream for name. The client must be registered at call time.
func (s *Service) Open(name domain.Username) (domain.MessageStream, error) {
	if _, err := s.directory.Lookup(name); err != nil {
		return nil, fmt.Errorf("open stream for %q: %w", name, err)
	}
	if !s.queues.Exists(name) {
		return nil, fmt.Errorf("open stream for %q: %w", name, domain.ErrQueueNotFound)
	}

	s.gauge.StreamOpened(context.Background())
	s.logger.Debug("stream_opened", slog.String("client", name.String()))

	return &Stream{
		name:   name,
		queues: s.queues,
		poll:   s.cfg.PollInterval,
		done:   make(chan struct{}),
		onClose: func() {
			s.gauge.StreamClosed(context.Background())
			s.logger.Debug("stream_closed", slog.String("client", name.String()))
		},
	}, nil
}

// Stream drains one client's queue. It is meant for a single consumer;
// concurrent streams on the same client never receive the same message.
type Stream struct {
	name    domain.Username
	queues  domain.DeliveryQueue
	poll    time.Duration
	onClose func()
	done    chan struct{}

	closeOnce sync.Once
}

// Next returns the oldest queued message, waiting until one arrives or ctx
// is done.
func (st *Stream) Next(ctx context.Context) (domain.Message, error) {
	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		if st.isClosed() {
			return domain.Message{}, ErrStreamClosed
		}
		if err := ctx.Err(); err != nil {
			return domain.Message{}, err
		}

		// Take the wakeup channel first so an enqueue between the drain
		// and the wait is not missed.
		changed, err := st.queues.Changed(st.name)
		if err != nil {
			return domain.Message{}, err
		}
		msg, ok, err := st.queues.DrainOne(st.name)
		if err != nil {
			return domain.Message{}, err
		}
		if ok {
			return msg, nil
		}

		if ticker == nil {
			ticker = time.NewTicker(st.poll)
		}
		select {
		case <-ctx.Done():
			return domain.Message{}, ctx.Err()
		case <-st.done:
			return domain.Message{}, ErrStreamClosed
		case <-changed:
		case <-ticker.C:
		}
	}
}

// Restore puts msg back at the head of the queue.
func (st *Stream) Restore(msg domain.Message) error {
	return st.queues.Restore(st.name, msg)
}

// Close ends the stream and releases a Next that is waiting. It is safe to
// call more than once.
func (st *Stream) Close() {
	st.closeOnce.Do(func() {
		close(st.done)
		st.onClose()
	})
}

func (st *Stream) isClosed() bool {
	select {
	case <-st.done:
		return true
	default:
		return false
	}
}

type nopGauge struct{}

func (nopGauge) StreamOpened(context.Context) {}
func (nopGauge) StreamClosed(context.Context) {}

var (
	_ domain.StreamService = (*Service)(nil)
	_ domain.MessageStream = (*Stream)(nil)
)
