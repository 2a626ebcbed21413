package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"relaychat/internal/domain"
)

// MessageIDHeader carries the message id on webhook requests.
const MessageIDHeader = "X-Relay-Message-Id"

// WebhookConfig tunes webhook delivery.
type WebhookConfig struct {
	Timeout          time.Duration
	FailureThreshold uint32
	ResetTimeout     time.Duration
}

// Webhook pushes events to client callback URLs.
type Webhook struct {
	cfg    WebhookConfig
	client *http.Client
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewWebhook returns a webhook pusher. A nil client uses a plain http.Client.
func NewWebhook(cfg WebhookConfig, client *http.Client, logger *slog.Logger) *Webhook {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// TryDeliver POSTs msg's event to the client's callback.
func (w *Webhook) TryDeliver(ctx context.Context, client domain.Client, msg domain.Message) error {
	callback := client.Handle.Callback
	if callback == "" {
		return domain.ErrNoRoute
	}

	_, err := w.breaker(callback).Execute(func() (interface{}, error) {
		return nil, w.post(ctx, callback, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", domain.ErrUnreachable, err)
	}
	return err
}

func (w *Webhook) post(ctx context.Context, url string, msg domain.Message) error {
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(msg.Event())
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "relaychat/1.0")
	req.Header.Set(MessageIDHeader, msg.ID.String())

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnreachable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: callback returned %d", domain.ErrUnreachable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: callback returned %d", domain.ErrRejected, resp.StatusCode)
	}
}

func (w *Webhook) breaker(url string) *gobreaker.CircuitBreaker {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cb, ok := w.breakers[url]; ok {
		return cb
	}
	threshold := w.cfg.FailureThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        url,
		MaxRequests: 1,
		Timeout:     w.cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A callback that answers, even with a refusal, is reachable.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrRejected)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			w.logger.Warn("webhook_breaker_state_changed",
				slog.String("callback", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	w.breakers[url] = cb
	return cb
}

var _ domain.Pusher = (*Webhook)(nil)
