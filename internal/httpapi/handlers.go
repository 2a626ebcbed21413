package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/uptrace/bunrouter"

	"relaychat/internal/domain"
	"relaychat/internal/sse"
)

const maxBodyBytes = 64 << 10

type registerRequest struct {
	Name     domain.Username `json:"name"`
	Callback string          `json:"callback,omitempty"`
}

type sendRequest struct {
	From    domain.Username `json:"from"`
	To      domain.Username `json:"to"`
	Message string          `json:"message"`
}

// SendResponse is the body returned by POST /send.
type SendResponse struct {
	Status  domain.Outcome   `json:"status"`
	Message string           `json:"message"`
	ID      domain.MessageID `json:"id"`
}

type activeRequest struct {
	Active *bool `json:"active"`
}

// ActiveResponse is the body returned by PUT /clients/:name/active.
type ActiveResponse struct {
	Name   domain.Username `json:"name"`
	Active bool            `json:"active"`
}

// ClientsResponse is the body returned by GET /clients and GET /search.
type ClientsResponse struct {
	Clients []domain.Username `json:"clients"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleRegister(w http.ResponseWriter, req bunrouter.Request) error {
	var body registerRequest
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	reg, err := s.deps.Clients.Register(req.Context(), body.Name, body.Callback)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, reg)
	return nil
}

func (s *Server) handleSend(w http.ResponseWriter, req bunrouter.Request) error {
	var body sendRequest
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	if s.deps.Limiter != nil && body.From != "" && !s.deps.Limiter.Allow(body.From.String()) {
		if s.deps.Recorder != nil {
			s.deps.Recorder.RecordRateLimited(req.Context())
		}
		return fmt.Errorf("%w: sender %q", domain.ErrRateLimited, body.From)
	}

	receipt, err := s.deps.Router.Send(req.Context(), body.From, body.To, body.Message)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, SendResponse{
		Status:  receipt.Outcome,
		Message: receipt.Outcome.Summary(),
		ID:      receipt.ID,
	})
	return nil
}

func (s *Server) handleMessages(w http.ResponseWriter, req bunrouter.Request) error {
	name := domain.Username(req.URL.Query().Get("client"))
	if name == "" {
		return fmt.Errorf("%w: client is required", domain.ErrInvalidRequest)
	}
	st, err := s.deps.Streams.Open(name)
	if err != nil {
		return err
	}
	defer st.Close()

	sw, err := sse.NewWriter(w)
	if err != nil {
		if errors.Is(err, sse.ErrNoFlusher) {
			return err
		}
		// Header already sent; the client is gone.
		return nil
	}

	// The response has started; failures from here on end the stream.
	ctx := req.Context()
	log := s.logger.With(slog.String("client", name.String()))
	for {
		msg, err := st.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("stream_failed", slog.String("error", err.Error()))
			}
			return nil
		}

		data, err := json.Marshal(msg.Event())
		if err != nil {
			return nil
		}
		if err := sw.Send(sse.Msg{ID: msg.ID.String(), Data: data}); err != nil {
			if rerr := st.Restore(msg); rerr != nil {
				log.Error("stream_restore_failed",
					slog.String("message_id", msg.ID.String()),
					slog.String("error", rerr.Error()))
			}
			log.Debug("stream_write_failed", slog.String("error", err.Error()))
			return nil
		}
	}
}

func (s *Server) handleClients(w http.ResponseWriter, req bunrouter.Request) error {
	writeJSON(w, http.StatusOK, ClientsResponse{Clients: nonNil(s.deps.Clients.List())})
	return nil
}

func (s *Server) handleSearch(w http.ResponseWriter, req bunrouter.Request) error {
	query := req.URL.Query().Get("query")
	writeJSON(w, http.StatusOK, ClientsResponse{Clients: nonNil(s.deps.Clients.Search(query))})
	return nil
}

func (s *Server) handleValidate(w http.ResponseWriter, req bunrouter.Request) error {
	name := domain.Username(req.URL.Query().Get("username"))
	if err := s.deps.Clients.Validate(name); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("User %s is registered", name)})
	return nil
}

func (s *Server) handleSetActive(w http.ResponseWriter, req bunrouter.Request) error {
	name := domain.Username(req.Param("name"))
	var body activeRequest
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	if body.Active == nil {
		return fmt.Errorf("%w: active is required", domain.ErrInvalidRequest)
	}
	if err := s.deps.Clients.SetActive(req.Context(), name, *body.Active); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, ActiveResponse{Name: name, Active: *body.Active})
	return nil
}

func (s *Server) handleAttach(w http.ResponseWriter, req bunrouter.Request) error {
	if s.deps.Hub == nil {
		return s.handleNotFound(w, req)
	}
	q := req.URL.Query()
	name := domain.Username(q.Get("client"))
	if name == "" {
		return fmt.Errorf("%w: client is required", domain.ErrInvalidRequest)
	}
	return s.deps.Hub.Attach(w, req.Request, name, q.Get("handle"))
}

func (s *Server) handleHealth(w http.ResponseWriter, req bunrouter.Request) error {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	return nil
}

func (s *Server) handleNotFound(w http.ResponseWriter, req bunrouter.Request) error {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found", Code: CodeNotFound})
	return nil
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, req bunrouter.Request) error {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error: "method not allowed",
		Code:  CodeMethodNotAllowed,
	})
	return nil
}

func decodeJSON(w http.ResponseWriter, req bunrouter.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body exceeds %d bytes", domain.ErrInvalidRequest, maxErr.Limit)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

func nonNil(names []domain.Username) []domain.Username {
	if names == nil {
		return []domain.Username{}
	}
	return names
}
