// Package classify decides, for each growing prefix of a markdown stream,
// which part is safe to compile and which trailing construct must stay
// hidden or be replaced by a placeholder element.
//
// A Session is the per-stream cache. It is fed the full cumulative text on
// every call and only scans the characters it has not seen yet, so a
// monotonically growing stream costs linear time overall.
package classify

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/mdstream"
	"github.com/sirupsen/logrus"
)

// MaxPending bounds the bytes a single open construct may hold back. A
// construct that grows past it is committed as text.
const MaxPending = 4096

// Interface compliance check.
var _ mdstream.Classifier = (*Session)(nil)

// Session classifies one logical stream. It is not safe for concurrent use;
// the caller serializes updates in arrival order.
type Session struct {
	complete  strings.Builder
	pending   string
	token     mdstream.TokenKind
	processed int

	output string
	buf    strings.Builder

	resolver Resolver
	logger   logrus.FieldLogger
}

// Option configures a [Session].
type Option func(*Session)

// WithResolver sets the placeholder resolver. Without one, incomplete
// constructs are always hidden.
func WithResolver(r Resolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithPlaceholders resolves placeholders against the component registry,
// using overrides to rename the placeholder component per kind.
func WithPlaceholders(components mdstream.Components, overrides map[mdstream.TokenKind]string) Option {
	return WithResolver(NewResolver(overrides, components.Has))
}

// WithLogger sets the logger for diagnostics. The default discards output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a new [Session].
func New(opts ...Option) *Session {
	s := &Session{}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.logger = l
	}
	return s
}

// Classify returns the display markdown for text, the full cumulative
// markdown received so far. When hasNextChunk is false the text is final:
// it is returned unchanged and the session starts over.
func (s *Session) Classify(text string, hasNextChunk bool) string {
	if !hasNextChunk {
		s.Reset()
		s.output = text
		return text
	}

	end := completeRunes(text)
	if !utf8.ValidString(text[:end]) {
		s.logger.WithError(mdstream.ErrInvalidInput).
			WithField("bytes", len(text)).
			Warn("classify: dropping update")
		s.output = ""
		return ""
	}

	if !s.continues(text) {
		if s.processed > 0 {
			s.logger.WithField("committed", s.complete.Len()).
				Debug("classify: text does not extend previous input, starting over")
		}
		s.reset()
	}
	s.process(text, end)

	s.output = s.complete.String() + s.placeholder()
	return s.output
}

// Feed appends delta to the session's own cumulative buffer and classifies
// the result as a non-final chunk.
func (s *Session) Feed(delta string) string {
	s.buf.WriteString(delta)
	return s.Classify(s.buf.String(), true)
}

// Finish classifies the cumulative buffer built by Feed as final.
func (s *Session) Finish() string {
	return s.Classify(s.buf.String(), false)
}

// Output returns the display markdown produced by the last call.
func (s *Session) Output() string {
	return s.output
}

// Reset discards all stream state.
func (s *Session) Reset() {
	s.reset()
	s.buf.Reset()
	s.output = ""
}

func (s *Session) reset() {
	s.complete.Reset()
	s.pending = ""
	s.token = mdstream.TokenText
	s.processed = 0
}

// continues reports whether text starts with everything folded so far.
func (s *Session) continues(text string) bool {
	complete := s.complete.String()
	if !strings.HasPrefix(text, complete) {
		return false
	}
	return strings.HasPrefix(text[len(complete):], s.pending)
}

func (s *Session) process(text string, end int) {
	if s.processed >= end {
		return
	}
	if endsInOpenFence(text[:end]) {
		// Inside a code block nothing is markdown: commit verbatim.
		s.complete.WriteString(s.pending)
		s.complete.WriteString(text[s.processed:end])
		s.pending = ""
		s.token = mdstream.TokenText
		s.processed = end
		return
	}
	for s.processed < end {
		_, size := utf8.DecodeRuneInString(text[s.processed:end])
		s.pending += text[s.processed : s.processed+size]
		s.processed += size
		s.step()
	}
}

func (s *Session) step() {
	if s.token == mdstream.TokenText {
		for _, r := range recognizers {
			if r.IsStart(s.pending) {
				s.token = r.Kind()
				return
			}
		}
		s.commit()
		return
	}
	if len(s.pending) > MaxPending {
		s.commit()
		return
	}
	if r, ok := recognizerFor(s.token); ok && r.IsStreamingValid(s.pending) {
		return
	}
	if kind, ok := s.handoff(); ok {
		s.token = kind
		return
	}
	s.commit()
}

// handoff finds another recognizer that still accepts the pending text once
// the current one has let go of it, so that "* " moves from emphasis to a
// list item.
func (s *Session) handoff() (mdstream.TokenKind, bool) {
	for _, r := range recognizers {
		if r.Kind() != s.token && r.IsStart(s.pending) && r.IsStreamingValid(s.pending) {
			return r.Kind(), true
		}
	}
	return mdstream.TokenText, false
}

func (s *Session) commit() {
	s.complete.WriteString(s.pending)
	s.pending = ""
	s.token = mdstream.TokenText
}

// placeholder returns what stands in for the pending construct.
func (s *Session) placeholder() string {
	if s.token == mdstream.TokenText || s.pending == "" {
		return ""
	}
	switch {
	case s.token == mdstream.TokenImage && s.pending == "!":
		return ""
	case s.token == mdstream.TokenTable && strings.Count(s.pending, "\n") >= 2:
		// Header, separator and a started row already render as a table.
		return s.pending
	}
	name, ok := s.resolver.Resolve(s.token)
	if !ok {
		return ""
	}
	return "<" + name + ` data-raw="` + EncodeURIComponent(s.pending) + `" />`
}

// completeRunes returns the length of the longest prefix of text that does
// not end in a truncated multi-byte sequence.
func completeRunes(text string) int {
	for i := len(text) - 1; i >= 0 && i >= len(text)-utf8.UTFMax+1; i-- {
		if !utf8.RuneStart(text[i]) {
			continue
		}
		if !utf8.FullRuneInString(text[i:]) {
			return i
		}
		break
	}
	return len(text)
}
