package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/mdstream"
)

type sourceState int

const (
	stateStreaming sourceState = iota
	stateComplete
	stateError
	stateClosed
)

// errUnexpectedEOF is returned when the body ends before message_stop.
var errUnexpectedEOF = errors.New("anthropic: unexpected end of stream")

// source implements [mdstream.Source] by parsing SSE events from an HTTP
// response body.
type source struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   sourceState
	err     error // terminal error, if any
}

// Interface compliance check.
var _ mdstream.Source = (*source)(nil)

func newSource(ctx context.Context, body io.ReadCloser) *source {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &source{body: body, scanner: sc, ctx: ctx}
}

// Next returns the next text delta. It returns io.EOF once message_stop
// has been received.
func (s *source) Next() (string, error) {
	switch s.state {
	case stateComplete:
		return "", io.EOF
	case stateError:
		return "", s.err
	case stateClosed:
		return "", mdstream.ErrSourceClosed
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			return "", s.terminate(err)
		}

		text, err := s.processEvent(eventType, data)
		if err != nil {
			return "", s.terminate(err)
		}
		if s.state == stateComplete {
			return "", io.EOF
		}
		if text != "" {
			return text, nil
		}
	}
}

// Close closes the underlying HTTP response body.
func (s *source) Close() error {
	if s.state == stateStreaming {
		s.state = stateClosed
	}
	return s.body.Close()
}

// terminate records a terminal error. A cancelled context takes precedence
// over whatever read error the cancellation caused.
func (s *source) terminate(err error) error {
	s.state = stateError
	switch {
	case s.ctx.Err() != nil:
		s.err = fmt.Errorf("anthropic: %w", s.ctx.Err())
	case err == io.EOF:
		s.err = errUnexpectedEOF
	default:
		s.err = err
	}
	return s.err
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *source) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if v, ok := strings.CutPrefix(line, "event: "); ok {
			eventType = v
		} else if v, ok := strings.CutPrefix(line, "data: "); ok {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(v)
		}
		// Comments and unknown fields are ignored.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}
	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processEvent returns the text carried by an SSE event, if any.
func (s *source) processEvent(eventType, data string) (string, error) {
	switch eventType {
	case "content_block_delta":
		var evt sseContentBlockDelta
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return "", fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
		}
		if evt.Delta.Type != "text_delta" {
			return "", nil
		}
		return evt.Delta.Text, nil
	case "message_stop":
		s.state = stateComplete
		return "", nil
	case "error":
		var evt sseError
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return "", fmt.Errorf("anthropic: failed to parse error event: %w", err)
		}
		return "", fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
	default:
		// message_start, content_block_start/stop, message_delta, ping and
		// unknown event types carry no text.
		return "", nil
	}
}
