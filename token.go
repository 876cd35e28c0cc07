package mdstream

// TokenKind is the kind of markdown construct the classifier currently holds
// open. TokenText means nothing is open.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenLink
	TokenImage
	TokenHTML
	TokenEmphasis
	TokenList
	TokenTable
)

var tokenNames = [...]string{
	TokenText:     "text",
	TokenLink:     "link",
	TokenImage:    "image",
	TokenHTML:     "html",
	TokenEmphasis: "emphasis",
	TokenList:     "list",
	TokenTable:    "table",
}

// String returns the lower-case name of the kind, e.g. "link".
func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "unknown"
	}
	return tokenNames[k]
}

// PlaceholderName returns the default placeholder component name for k,
// e.g. "incomplete-link".
func (k TokenKind) PlaceholderName() string {
	return "incomplete-" + k.String()
}

// ParseTokenKind returns the kind named s. It reports false for unknown names.
func ParseTokenKind(s string) (TokenKind, bool) {
	for i, name := range tokenNames {
		if name == s {
			return TokenKind(i), true
		}
	}
	return TokenText, false
}
