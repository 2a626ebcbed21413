package httpapi

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/uptrace/bunrouter"
)

func (s *Server) accessLog(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		err := next(rec, req)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(req.Context(), level, "http_request",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("remote_addr", req.RemoteAddr),
			slog.Int("status", rec.Status()),
			slog.Int64("bytes", rec.bytes),
			slog.Duration("duration", time.Since(start)),
		)
		return err
	}
}

func (s *Server) handleErrors(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		err := next(w, req)
		if err == nil {
			return nil
		}
		if status, _ := classify(err); status >= http.StatusInternalServerError {
			s.logger.Error("request_failed",
				slog.String("path", req.URL.Path),
				slog.String("error", err.Error()))
		}
		writeError(w, err)
		return nil
	}
}

// statusRecorder captures the response status and size. It keeps the
// Flusher and Hijacker of the wrapped writer reachable for streams and
// websocket upgrades.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *statusRecorder) Flush() {
	_ = r.FlushError()
}

// FlushError flushes the wrapped writer and reports a failed flush.
func (r *statusRecorder) FlushError() error {
	return http.NewResponseController(r.ResponseWriter).Flush()
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	if r.status == 0 {
		r.status = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// cors handles Cross-Origin Resource Sharing for browser clients. An empty
// origin list disables it; "*" allows any origin.
// See https://www.w3.org/TR/cors/
type cors struct {
	origins []string
	maxAge  time.Duration
}

const (
	corsOriginHeader        = "Origin"
	corsRequestMethodHeader = "Access-Control-Request-Method"
	corsAllowOriginHeader   = "Access-Control-Allow-Origin"
)

func (c cors) wrap(h http.Handler) http.Handler {
	if len(c.origins) == 0 {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions && r.Header.Get(corsRequestMethodHeader) != "" {
			c.preflight(w, r)
			return
		}
		c.allowOrigin(r.Header.Get(corsOriginHeader), w.Header())
		h.ServeHTTP(w, r)
	})
}

func (c cors) preflight(w http.ResponseWriter, r *http.Request) {
	headers := w.Header()
	headers.Add("Vary", corsOriginHeader)
	headers.Add("Vary", corsRequestMethodHeader)

	origin := r.Header.Get(corsOriginHeader)
	if origin == "" {
		http.Error(w, "missing Origin HTTP header", http.StatusBadRequest)
		return
	}
	if !c.allowOrigin(origin, headers) {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}
	headers.Set("Access-Control-Allow-Methods", "GET, POST, PUT")
	headers.Set("Access-Control-Allow-Headers", "Content-Type")
	if c.maxAge > 0 {
		headers.Set("Access-Control-Max-Age", strconv.Itoa(int(c.maxAge/time.Second)))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c cors) allowOrigin(origin string, headers http.Header) bool {
	switch {
	case slices.Contains(c.origins, "*"):
		headers.Set(corsAllowOriginHeader, "*")
		return true
	case origin != "" && slices.Contains(c.origins, origin):
		headers.Set(corsAllowOriginHeader, origin)
		headers.Add("Vary", corsOriginHeader)
		return true
	default:
		return false
	}
}
