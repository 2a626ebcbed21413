package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"relaychat/internal/domain"
	"relaychat/internal/sse"
)

const maxEventBytes = 1 << 20

// HTTPClient talks to a relay server.
type HTTPClient struct {
	Base   string
	HTTP   *http.Client
	Dialer *websocket.Dialer
}

// NewHTTP returns a client for the relay at base. A nil client uses
// http.DefaultClient; it should not carry a Timeout, which would cut
// streams short.
func NewHTTP(base string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		Base:   strings.TrimRight(base, "/"),
		HTTP:   client,
		Dialer: websocket.DefaultDialer,
	}
}

// StatusError is a non-2xx answer from the relay.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("relay %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Unwrap maps the response code to a domain sentinel.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case "invalid_request":
		return domain.ErrInvalidRequest
	case "recipient_not_found":
		return domain.ErrRecipientNotFound
	case "client_not_found":
		return domain.ErrClientNotFound
	case "stale_handle":
		return domain.ErrStaleHandle
	case "rate_limited":
		return domain.ErrRateLimited
	default:
		return nil
	}
}

type sendResponse struct {
	Status  domain.Outcome   `json:"status"`
	Message string           `json:"message"`
	ID      domain.MessageID `json:"id"`
}

type clientsResponse struct {
	Clients []domain.Username `json:"clients"`
}

// Register registers name, replacing any earlier registration.
func (c *HTTPClient) Register(
	ctx context.Context,
	name domain.Username,
	callback string,
) (domain.Registration, error) {
	in := struct {
		Name     domain.Username `json:"name"`
		Callback string          `json:"callback,omitempty"`
	}{Name: name, Callback: callback}

	var out domain.Registration
	if err := c.do(ctx, http.MethodPost, "/register", in, &out); err != nil {
		return domain.Registration{}, err
	}
	return out, nil
}

// Send routes body from one client to another.
func (c *HTTPClient) Send(
	ctx context.Context,
	from domain.Username,
	to domain.Username,
	body string,
) (domain.Receipt, error) {
	in := struct {
		From    domain.Username `json:"from"`
		To      domain.Username `json:"to"`
		Message string          `json:"message"`
	}{From: from, To: to, Message: body}

	var out sendResponse
	if err := c.do(ctx, http.MethodPost, "/send", in, &out); err != nil {
		return domain.Receipt{}, err
	}
	return domain.Receipt{ID: out.ID, Outcome: out.Status}, nil
}

// Clients lists every registered name.
func (c *HTTPClient) Clients(ctx context.Context) ([]domain.Username, error) {
	var out clientsResponse
	if err := c.do(ctx, http.MethodGet, "/clients", nil, &out); err != nil {
		return nil, err
	}
	return out.Clients, nil
}

// Search lists registered names containing query, ignoring case.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]domain.Username, error) {
	var out clientsResponse
	if err := c.do(ctx, http.MethodGet, "/search?query="+url.QueryEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return out.Clients, nil
}

// Validate reports whether name is registered.
func (c *HTTPClient) Validate(ctx context.Context, name domain.Username) error {
	return c.do(ctx, http.MethodGet, "/validate?username="+url.QueryEscape(name.String()), nil, nil)
}

// SetActive toggles push delivery for name.
func (c *HTTPClient) SetActive(ctx context.Context, name domain.Username, active bool) error {
	in := struct {
		Active bool `json:"active"`
	}{Active: active}
	return c.do(ctx, http.MethodPut, "/clients/"+url.PathEscape(name.String())+"/active", in, nil)
}

// Stream reads name's queued messages until ctx is done or fn fails.
func (c *HTTPClient) Stream(ctx context.Context, name domain.Username, fn func(domain.Event) error) error {
	path := "/messages?client=" + url.QueryEscape(name.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", sse.ContentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer resp.Body.Close()
	if err := sse.VerifyResponse(resp); err != nil {
		return statusError(http.MethodGet, path, resp)
	}

	var stopped bool
	err = sse.ParseStream(resp.Body, maxEventBytes, func(m sse.Msg) error {
		var ev domain.Event
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			return fmt.Errorf("decode event %s: %w", m.ID, err)
		}
		err := fn(ev)
		if errors.Is(err, sse.ErrCloseEventStream) {
			stopped = true
		}
		return err
	})
	switch {
	case ctx.Err() != nil, stopped:
		return nil
	case err == nil:
		// The relay only ends a stream when it shuts down.
		return io.ErrUnexpectedEOF
	default:
		return err
	}
}

// Attach opens the websocket push channel for name and calls fn for each
// pushed frame until ctx is done or fn fails.
func (c *HTTPClient) Attach(
	ctx context.Context,
	name domain.Username,
	handleID string,
	fn func(domain.PushFrame) error,
) error {
	u, err := url.Parse(c.Base)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"client": {name.String()}, "handle": {handleID}}.Encode()

	conn, resp, err := c.Dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && errors.Is(err, websocket.ErrBadHandshake) {
			defer resp.Body.Close()
			return statusError(http.MethodGet, "/ws", resp)
		}
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var frame domain.PushFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusError(method, path, resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	e := &StatusError{Method: method, Path: path, Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		e.Code = body.Code
		e.Message = body.Error
	}
	return e
}

// Compile-time assertion that HTTPClient implements domain.RelayClient.
var _ domain.RelayClient = (*HTTPClient)(nil)
