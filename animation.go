package mdstream

import "time"

// Animation configures the fade-in of streamed text.
type Animation struct {
	Enabled      bool
	FadeDuration time.Duration
	Easing       string
}

// DefaultAnimation returns an enabled fade-in of 200ms with ease-in-out.
func DefaultAnimation() Animation {
	return Animation{
		Enabled:      true,
		FadeDuration: 200 * time.Millisecond,
		Easing:       "ease-in-out",
	}
}
