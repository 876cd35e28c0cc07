package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/mdstream"
)

// Resolver maps a token kind to the placeholder component that stands in
// for it. The zero Resolver resolves nothing, so every incomplete construct
// is hidden.
type Resolver struct {
	names map[mdstream.TokenKind]string
}

// NewResolver resolves each kind to overrides[kind], or the kind's default
// name (see [mdstream.TokenKind.PlaceholderName]), and keeps only the names
// registered reports as having a component. The lookup is done once here.
func NewResolver(overrides map[mdstream.TokenKind]string, registered func(name string) bool) Resolver {
	r := Resolver{names: make(map[mdstream.TokenKind]string)}
	if registered == nil {
		return r
	}
	for _, rec := range recognizers {
		kind := rec.Kind()
		name := kind.PlaceholderName()
		if o := overrides[kind]; o != "" {
			name = strings.ToLower(o)
		}
		if registered(name) {
			r.names[kind] = name
		}
	}
	return r
}

// Resolve returns the placeholder component name for kind and whether one
// is registered.
func (r Resolver) Resolve(kind mdstream.TokenKind) (string, bool) {
	name, ok := r.names[kind]
	return name, ok
}

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s like JavaScript's encodeURIComponent:
// everything except A-Z a-z 0-9 and -_.!~*'() is escaped byte by byte.
// Invalid UTF-8, which includes encoded lone surrogates, is stripped first;
// if the text still does not encode, the result is empty.
func EncodeURIComponent(s string) string {
	s = strings.ToValidUTF8(s, "")
	if !utf8.ValidString(s) {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
