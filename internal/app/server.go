package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"relaychat/internal/config"
	"relaychat/internal/domain"
	"relaychat/internal/httpapi"
	"relaychat/internal/push"
	"relaychat/internal/services/clients"
	"relaychat/internal/services/router"
	"relaychat/internal/services/stream"
	"relaychat/internal/store/memory"
	"relaychat/internal/telemetry"
)

// Server is a fully wired relay.
type Server struct {
	Directory *memory.Directory
	Queues    *memory.Queues
	Clients   *clients.Service
	Router    *router.Service
	Streams   *stream.Service
	Hub       *push.Hub // nil when websocket push is disabled
	HTTP      *httpapi.Server

	limiter         *httpapi.SenderRateLimiter
	shutdownMetrics func(context.Context) error
	logger          *slog.Logger
	closeOnce       sync.Once
}

// NewServer builds the relay described by cfg. When metrics are enabled the
// OTLP exporter is installed before any instrument is created.
func NewServer(ctx context.Context, cfg *config.Config, version string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{logger: logger}

	if cfg.Metrics.Enabled {
		shutdown, err := telemetry.InitProvider(ctx, cfg.Metrics, version)
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		s.shutdownMetrics = shutdown
		logger.Info("metrics_enabled",
			slog.String("endpoint", cfg.Metrics.OTLPEndpoint),
			slog.Duration("interval", cfg.Metrics.Interval))
	}
	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		return nil, err
	}

	s.Queues = memory.NewQueues()
	s.Directory = memory.NewDirectory(s.Queues)

	var chain push.Chain
	if cfg.WebSocket.Enabled {
		s.Hub = push.NewHub(s.Directory, push.HubConfig{
			WriteTimeout:   cfg.WebSocket.WriteTimeout,
			PongWait:       cfg.WebSocket.PongWait,
			AllowedOrigins: cfg.Server.CORSOrigins,
		}, logger)
		chain = append(chain, s.Hub)
	}
	if cfg.Webhook.Enabled {
		chain = append(chain, push.NewWebhook(push.WebhookConfig{
			Timeout:          cfg.Webhook.Timeout,
			FailureThreshold: cfg.Webhook.FailureThreshold,
			ResetTimeout:     cfg.Webhook.ResetTimeout,
		}, &http.Client{}, logger))
	}

	var pusher domain.Pusher
	if len(chain) > 0 {
		pusher = chain
	}

	s.Clients = clients.New(s.Directory, metrics, logger)
	s.Router = router.New(s.Directory, s.Queues, pusher, router.Config{
		PushTimeout:    cfg.Router.PushTimeout,
		InactivePolicy: router.InactivePolicy(cfg.Router.InactivePolicy),
	}, metrics, logger)
	s.Streams = stream.New(s.Directory, s.Queues, stream.Config{
		PollInterval: cfg.Stream.PollInterval,
	}, metrics, logger)

	if cfg.RateLimit.Enabled {
		s.limiter = httpapi.NewSenderRateLimiter(
			cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, cfg.RateLimit.CleanupInterval)
	}

	deps := httpapi.Deps{
		Clients:  s.Clients,
		Router:   s.Router,
		Streams:  s.Streams,
		Limiter:  s.limiter,
		Recorder: metrics,
	}
	if s.Hub != nil {
		deps.Hub = s.Hub
	}
	s.HTTP = httpapi.New(httpapi.Config{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		CORSOrigins:       cfg.Server.CORSOrigins,
	}, deps, logger)

	return s, nil
}

// Handler returns the HTTP handler of the relay.
func (s *Server) Handler() http.Handler { return s.HTTP.Handler() }

// Run serves on the configured address until ctx is done, then releases
// everything the server holds.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()
	return s.HTTP.Listen(ctx)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()
	return s.HTTP.Serve(ctx, ln)
}

// Close drops websocket attachments, stops the rate limiter and flushes
// metrics. It is safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		if s.Hub != nil {
			s.Hub.Close()
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}
		if s.shutdownMetrics != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.shutdownMetrics(ctx); err != nil {
				s.logger.Warn("metrics_shutdown_failed", slog.String("error", err.Error()))
			}
		}
	})
}
