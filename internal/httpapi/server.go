package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/uptrace/bunrouter"

	"relaychat/internal/domain"
)

// Config holds HTTP listener settings.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	CORSOrigins       []string
}

// Attacher serves websocket push attachments.
type Attacher interface {
	Attach(w http.ResponseWriter, r *http.Request, name domain.Username, handleID string) error
}

// RateRecorder counts sends refused by the rate limiter.
type RateRecorder interface {
	RecordRateLimited(ctx context.Context)
}

// Deps are the services behind the routes. Hub, Limiter and Recorder are
// optional.
type Deps struct {
	Clients  domain.ClientService
	Router   domain.MessageRouter
	Streams  domain.StreamService
	Hub      Attacher
	Limiter  *SenderRateLimiter
	Recorder RateRecorder
}

// Server is the relay's HTTP front end.
type Server struct {
	cfg     Config
	deps    Deps
	logger  *slog.Logger
	handler http.Handler
}

// New builds the routes for deps.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, deps: deps, logger: logger}

	router := bunrouter.New(
		bunrouter.Use(s.accessLog, s.handleErrors),
		bunrouter.WithNotFoundHandler(s.handleNotFound),
		bunrouter.WithMethodNotAllowedHandler(s.handleMethodNotAllowed),
	)
	router.POST("/register", s.handleRegister)
	router.POST("/send", s.handleSend)
	router.GET("/messages", s.handleMessages)
	router.GET("/clients", s.handleClients)
	router.PUT("/clients/:name/active", s.handleSetActive)
	router.GET("/validate", s.handleValidate)
	router.GET("/search", s.handleSearch)
	router.GET("/ws", s.handleAttach)
	router.GET("/health", s.handleHealth)

	s.handler = cors{origins: cfg.CORSOrigins, maxAge: time.Hour}.wrap(router)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Listen serves on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Listen on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Open streams live on the base context and end when shutdown begins.
	base, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancelBase)

	s.logger.Info("http_server_starting", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("http_server_shutdown_initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http_server_shutdown_error", slog.String("error", err.Error()))
			return err
		}

		s.logger.Info("http_server_stopped")
		return nil
	}
}
