package push

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"relaychat/internal/domain"
)

// HubConfig tunes websocket attachments.
type HubConfig struct {
	WriteTimeout   time.Duration
	PongWait       time.Duration
	AllowedOrigins []string
}

// Hub keeps one websocket attachment per client name and pushes messages
// over it.
type Hub struct {
	directory domain.ClientDirectory
	cfg       HubConfig
	upgrader  websocket.Upgrader
	logger    *slog.Logger

	mu    sync.Mutex
	conns map[domain.Username]*attachment
}

type attachment struct {
	name     domain.Username
	handleID string
	conn     *websocket.Conn

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub returns a hub that checks attachments against directory.
func NewHub(directory domain.ClientDirectory, cfg HubConfig, logger *slog.Logger) *Hub {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		directory: directory,
		cfg:       cfg,
		logger:    logger,
		conns:     make(map[domain.Username]*attachment),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// Attach upgrades the request and serves the attachment until the peer goes
// away. The handle must match the client's current registration; a newer
// attachment for the same name replaces an older one.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, name domain.Username, handleID string) error {
	client, err := h.directory.Lookup(name)
	if err != nil {
		return fmt.Errorf("attach %q: %w", name, err)
	}
	if handleID == "" || client.Handle.ID != handleID {
		return fmt.Errorf("attach %q: %w", name, domain.ErrStaleHandle)
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request.
		h.logger.Warn("websocket_upgrade_failed", slog.String("error", err.Error()))
		return nil
	}

	a := &attachment{name: name, handleID: handleID, conn: ws, done: make(chan struct{})}
	h.mu.Lock()
	prev := h.conns[name]
	h.conns[name] = a
	h.mu.Unlock()
	if prev != nil {
		prev.close()
	}

	h.logger.Info("push_attached",
		slog.String("client", name.String()),
		slog.String("remote_addr", r.RemoteAddr))

	go h.pingLoop(a)
	h.readLoop(a)

	h.detach(a)
	a.close()
	h.logger.Info("push_detached", slog.String("client", name.String()))
	return nil
}

// TryDeliver writes msg to the client's attachment.
func (h *Hub) TryDeliver(ctx context.Context, client domain.Client, msg domain.Message) error {
	h.mu.Lock()
	a := h.conns[client.Name]
	h.mu.Unlock()
	if a == nil || a.handleID != client.Handle.ID {
		return domain.ErrNoRoute
	}

	deadline := time.Now().Add(h.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := a.write(domain.PushFrame{ID: msg.ID, Event: msg.Event()}, deadline); err != nil {
		h.detach(a)
		a.close()
		return fmt.Errorf("%w: %w", domain.ErrUnreachable, err)
	}
	return nil
}

// Attached reports whether name currently has an attachment.
func (h *Hub) Attached(name domain.Username) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.conns[name]
	return ok
}

// Close drops every attachment.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[domain.Username]*attachment)
	h.mu.Unlock()

	for _, a := range conns {
		a.close()
	}
}

func (h *Hub) readLoop(a *attachment) {
	_ = a.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	a.conn.SetPongHandler(func(string) error {
		return a.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})
	for {
		// Clients send nothing meaningful; reading drives pong and close handling.
		if _, _, err := a.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) pingLoop(a *attachment) {
	ticker := time.NewTicker(h.cfg.PongWait * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := a.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				a.close()
				return
			}
		}
	}
}

func (h *Hub) detach(a *attachment) {
	h.mu.Lock()
	if h.conns[a.name] == a {
		delete(h.conns, a.name)
	}
	h.mu.Unlock()
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 || slices.Contains(h.cfg.AllowedOrigins, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.cfg.AllowedOrigins, origin)
}

func (a *attachment) write(frame domain.PushFrame, deadline time.Time) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return a.conn.WriteJSON(frame)
}

func (a *attachment) close() {
	a.closeOnce.Do(func() {
		close(a.done)
		_ = a.conn.Close()
	})
}

var _ domain.Pusher = (*Hub)(nil)
