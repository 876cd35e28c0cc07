package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/mdstream"
	"google.golang.org/genai"
)

type sourceState int

const (
	stateStreaming sourceState = iota
	stateComplete
	stateError
	stateClosed
)

// source implements [mdstream.Source] by wrapping the genai SDK's streaming
// iterator.
type source struct {
	ctx   context.Context
	pull  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	state sourceState
	err   error
}

// Interface compliance check.
var _ mdstream.Source = (*source)(nil)

// NewSource wraps a genai response iterator. Thought parts are skipped and
// chunks without answer text produce no delta.
func NewSource(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) mdstream.Source {
	next, stop := iter.Pull2(seq)
	return &source{ctx: ctx, pull: next, stop: stop}
}

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
		if err := s.ctx.Err(); err != nil {
			return "", s.fail(err)
		}
		resp, err, ok := s.pull()
		if !ok {
			s.state = stateComplete
			return "", io.EOF
		}
		if err != nil {
			return "", s.fail(err)
		}
		if text := responseText(resp); text != "" {
			return text, nil
		}
	}
}

func (s *source) Close() error {
	if s.state == stateStreaming {
		s.state = stateClosed
	}
	s.stop()
	return nil
}

func (s *source) fail(err error) error {
	s.state = stateError
	s.err = fmt.Errorf("gemini: %w", err)
	return s.err
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
