package mock

import (
	"io"

	"github.com/fwojciec/mdstream"
)

// Interface compliance check.
var _ mdstream.Source = (*Source)(nil)

// Source is a test double for mdstream.Source.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe because
// callers commonly defer Close.
type Source struct {
	NextFn  func() (string, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Source) Next() (string, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Source) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Deltas returns a Source that yields deltas in order and then io.EOF.
func Deltas(deltas ...string) *Source {
	i := 0
	return &Source{
		NextFn: func() (string, error) {
			if i >= len(deltas) {
				return "", io.EOF
			}
			i++
			return deltas[i-1], nil
		},
	}
}
