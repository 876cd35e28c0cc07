package mdstream

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the output
// automatically matches any color scheme.
type Theme struct {
	Text    int // Body text
	Accent  int // Headings
	Link    int // Link text and URLs
	Code    int // Code spans and blocks
	Muted   int // Code gutters, URLs, placeholders
	Loading int // Components and code blocks still streaming
	Error   int // Error messages
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Text:    -1,
		Accent:  5,
		Link:    4,
		Code:    2,
		Muted:   8,
		Loading: 3,
		Error:   1,
	}
}
