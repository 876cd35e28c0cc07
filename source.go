package mdstream

// Source is a pull-based iterator over the text deltas of one logical
// stream, e.g. one LLM response. Cancellation flows through the context
// passed to whatever opened the Source.
//
// Next returns the next non-cumulative delta. It returns io.EOF once the
// stream has completed normally; any other error is terminal. After Close,
// Next returns ErrSourceClosed.
type Source interface {
	Next() (string, error)
	Close() error
}
