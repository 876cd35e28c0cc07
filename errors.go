package mdstream

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrInvalidInput indicates streaming text that is not valid UTF-8.
	ErrInvalidInput = errors.New("invalid input: text is not valid UTF-8")

	// ErrSourceClosed indicates Next() was called on a closed Source.
	ErrSourceClosed = errors.New("source closed")

	// ErrEmptyPrompt indicates a Provider was asked to stream without a
	// prompt.
	ErrEmptyPrompt = errors.New("empty prompt")
)
