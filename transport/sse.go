package transport

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// doneSentinel terminates chat-completions streams.
var doneSentinel = []byte("[DONE]")

// Event is a single Server-Sent Events frame. Name is the value of the
// event: field, empty for unnamed events. Data holds the data: payload
// with multi-line values joined by newlines.
type Event struct {
	Name string
	Data []byte
}

// EventReader consumes a text/event-stream body frame by frame.
type EventReader struct {
	src  io.ReadCloser
	r    *bufio.Reader
	done bool
}

// NewEventReader creates an EventReader over the response body.
func NewEventReader(rc io.ReadCloser) *EventReader {
	return &EventReader{
		src: rc,
		r:   bufio.NewReaderSize(rc, 16*1024),
	}
}

// Next returns the next event. It returns io.EOF when the stream ends
// cleanly or the [DONE] sentinel arrives, and io.ErrUnexpectedEOF when
// the stream stops mid-event.
func (er *EventReader) Next() (*Event, error) {
	if er.done {
		return nil, io.EOF
	}

	var name string
	var data bytes.Buffer
	for {
		line, err := er.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				er.done = true
				if data.Len() == 0 {
					return nil, io.EOF
				}
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if data.Len() == 0 {
				name = ""
				continue
			}
			payload := data.Bytes()
			if bytes.Equal(payload, doneSentinel) {
				er.done = true
				return nil, io.EOF
			}
			return &Event{Name: name, Data: payload}, nil

		case strings.HasPrefix(line, ":"):
			// Comment line, commonly used as a keepalive.
			continue

		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))

		case strings.HasPrefix(line, "data:"):
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(payload)
		}
	}
}

// Close releases the underlying body. Subsequent Next calls return io.EOF.
func (er *EventReader) Close() error {
	er.done = true
	if er.src != nil {
		return er.src.Close()
	}
	return nil
}
