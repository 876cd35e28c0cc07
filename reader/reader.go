// Package reader implements mdstream.Source over an io.Reader, simulating
// the chunked arrival of generated text.
package reader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/mdstream"
)

// DefaultChunkSize is the number of runes per chunk when none is set.
const DefaultChunkSize = 4

// Interface compliance check.
var _ mdstream.Source = (*Source)(nil)

// Source emits the text of an io.Reader in chunks of whole runes.
type Source struct {
	r         *bufio.Reader
	ctx       context.Context
	chunkSize int
	delay     time.Duration
	started   bool
	closed    bool
	done      bool
}

// Option configures a [Source].
type Option func(*Source)

// WithChunkSize sets the number of runes per chunk. Values below 1 are
// ignored.
func WithChunkSize(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithDelay sets the pause before every chunk after the first.
func WithDelay(d time.Duration) Option {
	return func(s *Source) { s.delay = d }
}

// WithContext sets a context that interrupts the delay between chunks.
func WithContext(ctx context.Context) Option {
	return func(s *Source) { s.ctx = ctx }
}

// New creates a [Source] reading from r.
func New(r io.Reader, opts ...Option) *Source {
	s := &Source{
		r:         bufio.NewReader(r),
		ctx:       context.Background(),
		chunkSize: DefaultChunkSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Next returns the next chunk. Invalid UTF-8 bytes are skipped.
func (s *Source) Next() (string, error) {
	if s.closed {
		return "", mdstream.ErrSourceClosed
	}
	if s.done {
		return "", io.EOF
	}
	if s.started && s.delay > 0 {
		if err := s.sleep(); err != nil {
			return "", err
		}
	}
	s.started = true

	var b strings.Builder
	for n := 0; n < s.chunkSize; {
		r, size, err := s.r.ReadRune()
		if errors.Is(err, io.EOF) {
			s.done = true
			break
		}
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
		if r == utf8.RuneError && size == 1 {
			continue
		}
		b.WriteRune(r)
		n++
	}
	if b.Len() == 0 {
		return "", io.EOF
	}
	return b.String(), nil
}

// Close stops the source. The underlying reader is left open.
func (s *Source) Close() error {
	s.closed = true
	return nil
}

func (s *Source) sleep() error {
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}
