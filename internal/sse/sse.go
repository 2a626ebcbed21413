package sse

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
)

// ContentType is the media type of an event stream.
const ContentType = "text/event-stream"

const (
	idPrefix    = "id: "
	eventPrefix = "event: "
	dataPrefix  = "data: "
	retryPrefix = "retry: "
)

// ErrNoFlusher is returned when the response writer cannot flush.
var ErrNoFlusher = errors.New("response writer does not support flushing")

// Msg is one event record.
type Msg struct {
	ID    string
	Event string
	Data  []byte
	// Retry is the reconnection time in milliseconds; zero omits it.
	Retry uint64
}

// String returns the encoded record.
func (msg *Msg) String() string {
	return string(msg.Encode(nil))
}

// Encode appends the wire form of msg to buf. Multi-line data is split
// into one data line per line.
func (msg *Msg) Encode(buf []byte) []byte {
	if msg.ID != "" {
		buf = append(buf, idPrefix...)
		buf = append(buf, msg.ID...)
		buf = append(buf, '\n')
	}
	if msg.Event != "" {
		buf = append(buf, eventPrefix...)
		buf = append(buf, msg.Event...)
		buf = append(buf, '\n')
	}
	if msg.Retry > 0 {
		buf = append(buf, retryPrefix...)
		buf = strconv.AppendUint(buf, msg.Retry, 10)
		buf = append(buf, '\n')
	}

	data := msg.Data
	for {
		buf = append(buf, dataPrefix...)
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			buf = append(buf, data...)
			break
		}
		buf = append(buf, data[:i+1]...)
		data = data[i+1:]
	}
	return append(buf, '\n', '\n')
}

// Writer sends records over an HTTP response, flushing each one.
type Writer struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	buf []byte
}

// NewWriter prepares w for streaming and writes the response header.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	if _, ok := w.(http.Flusher); !ok {
		return nil, ErrNoFlusher
	}
	h := w.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		return nil, err
	}
	return &Writer{w: w, rc: rc}, nil
}

// Send writes msg and flushes it to the client. A failed flush is reported,
// so the caller knows msg may not have left the process.
func (sw *Writer) Send(msg Msg) error {
	sw.buf = msg.Encode(sw.buf[:0])
	if _, err := sw.w.Write(sw.buf); err != nil {
		return err
	}
	return sw.rc.Flush()
}
