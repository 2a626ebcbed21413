package sse

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
)

var (
	ErrHTTPStatusNon200   = errors.New("HTTP status code indicates failure")
	ErrInvalidContentType = errors.New("invalid Content-Type, expected text/event-stream")

	// ErrCloseEventStream can be returned by a stream handler to stop
	// reading without reporting an error.
	ErrCloseEventStream = errors.New("close event stream")
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// VerifyResponse checks that resp is a successful event stream.
func VerifyResponse(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrHTTPStatusNon200
	}
	if ctype, _, _ := bytes.Cut([]byte(resp.Header.Get("Content-Type")), []byte(";")); string(bytes.TrimSpace(ctype)) != ContentType {
		return ErrInvalidContentType
	}
	return nil
}

// ParseStream reads records from r and calls fn for each complete one.
// Lines longer than maxSize fail the parse. Records without data are
// skipped, as is a trailing record not terminated by a blank line.
func ParseStream(r io.Reader, maxSize int, fn func(Msg) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanLines)
	var small [512]byte
	scanner.Buffer(small[:], maxSize)

	var (
		msg     Msg
		data    bytes.Buffer
		hasData bool
		first   = true
	)
	for scanner.Scan() {
		line := scanner.Bytes()
		if first {
			line = bytes.TrimPrefix(line, bom)
			first = false
		}

		if len(line) == 0 {
			if hasData {
				msg.Data = bytes.TrimSuffix(data.Bytes(), []byte{'\n'})
				if err := fn(msg); err != nil {
					if errors.Is(err, ErrCloseEventStream) {
						return nil
					}
					return err
				}
			}
			msg = Msg{}
			data.Reset()
			hasData = false
			continue
		}

		field, value, _ := bytes.Cut(line, []byte{':'})
		value = bytes.TrimPrefix(value, []byte{' '})
		switch string(field) {
		case "data":
			data.Write(value)
			data.WriteByte('\n')
			hasData = true
		case "event":
			msg.Event = string(value)
		case "id":
			msg.ID = string(value)
		case "retry":
			if ms, err := strconv.ParseUint(string(value), 10, 64); err == nil {
				msg.Retry = ms
			}
		}
		// Comments (empty field name) and unknown fields are ignored.
	}
	return scanner.Err()
}

// scanLines splits on LF, CR LF or a lone CR.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	i := bytes.IndexAny(data, "\r\n")
	switch {
	case i < 0:
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	case data[i] == '\n':
		return i + 1, data[:i], nil
	case i+1 < len(data):
		if data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		return i + 1, data[:i], nil
	case atEOF:
		return i + 1, data[:i], nil
	default:
		// CR at the end of the buffer may be followed by LF.
		return 0, nil, nil
	}
}
