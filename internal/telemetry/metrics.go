// Package telemetry records relay metrics with OpenTelemetry.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"relaychat/internal/domain"
)

const meterName = "relaychat"

// Metrics holds the relay's metric instruments.
type Metrics struct {
	messagesSent  metric.Int64Counter
	registrations metric.Int64Counter
	rateLimited   metric.Int64Counter
	pushDuration  metric.Float64Histogram
	streamsActive metric.Int64UpDownCounter
}

// NewMetrics creates the instruments on meter, or on the global meter
// provider when meter is nil.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	m := &Metrics{}

	var err error
	m.messagesSent, err = meter.Int64Counter(
		"relay.messages.sent.total",
		metric.WithDescription("Messages routed, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messagesSent counter: %w", err)
	}

	m.registrations, err = meter.Int64Counter(
		"relay.clients.registered.total",
		metric.WithDescription("Client registrations, including re-registrations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create registrations counter: %w", err)
	}

	m.rateLimited, err = meter.Int64Counter(
		"relay.requests.rate_limited.total",
		metric.WithDescription("Send requests refused by the per-sender rate limit"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rateLimited counter: %w", err)
	}

	m.pushDuration, err = meter.Float64Histogram(
		"relay.push.duration.ms",
		metric.WithDescription("Push attempt duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pushDuration histogram: %w", err)
	}

	m.streamsActive, err = meter.Int64UpDownCounter(
		"relay.streams.active",
		metric.WithDescription("Open message streams"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create streamsActive counter: %w", err)
	}

	return m, nil
}

// RecordSend counts a routed message.
func (m *Metrics) RecordSend(ctx context.Context, outcome domain.Outcome) {
	m.messagesSent.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome.String()),
	))
}

// RecordPush records how long a push attempt took and how it ended.
func (m *Metrics) RecordPush(ctx context.Context, elapsed time.Duration, err error) {
	m.pushDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("result", pushResult(err)),
	))
}

// RecordRegistration counts a registration.
func (m *Metrics) RecordRegistration(ctx context.Context) {
	m.registrations.Add(ctx, 1)
}

// RecordRateLimited counts a refused send.
func (m *Metrics) RecordRateLimited(ctx context.Context) {
	m.rateLimited.Add(ctx, 1)
}

// StreamOpened increments the open stream gauge.
func (m *Metrics) StreamOpened(ctx context.Context) { m.streamsActive.Add(ctx, 1) }

// StreamClosed decrements the open stream gauge.
func (m *Metrics) StreamClosed(ctx context.Context) { m.streamsActive.Add(ctx, -1) }

func pushResult(err error) string {
	switch {
	case err == nil:
		return "delivered"
	case errors.Is(err, domain.ErrNoRoute):
		return "no_route"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrUnreachable):
		return "unreachable"
	case errors.Is(err, domain.ErrRejected):
		return "rejected"
	default:
		return "error"
	}
}
