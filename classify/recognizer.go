package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/mdstream"
)

// Recognizer is the stateless policy for one kind of construct. IsStart
// reports whether pending opens the construct; IsStreamingValid reports
// whether pending is still an unfinished instance of it. Once
// IsStreamingValid returns false the construct is either complete or not
// the construct at all, and the pending text is committed.
type Recognizer interface {
	Kind() mdstream.TokenKind
	IsStart(pending string) bool
	IsStreamingValid(pending string) bool
}

type recognizer struct {
	kind  mdstream.TokenKind
	start func(string) bool
	valid func(string) bool
}

func (r recognizer) Kind() mdstream.TokenKind { return r.kind }

func (r recognizer) IsStart(pending string) bool { return r.start(pending) }

func (r recognizer) IsStreamingValid(pending string) bool { return r.valid(pending) }

// recognizers is ordered: the first whose IsStart matches wins, so "*"
// opens emphasis. When emphasis rejects "* " the list recognizer takes over.
var recognizers = []Recognizer{
	recognizer{kind: mdstream.TokenLink, start: prefixed("["), valid: linkValid},
	recognizer{kind: mdstream.TokenImage, start: prefixed("!"), valid: imageValid},
	recognizer{kind: mdstream.TokenHTML, start: prefixed("<"), valid: htmlValid},
	recognizer{kind: mdstream.TokenEmphasis, start: emphasisStart, valid: emphasisValid},
	recognizer{kind: mdstream.TokenList, start: listStart, valid: listValid},
	recognizer{kind: mdstream.TokenTable, start: prefixed("|"), valid: tableValid},
}

// Recognizers returns the recognizers in matching order.
func Recognizers() []Recognizer {
	out := make([]Recognizer, len(recognizers))
	copy(out, recognizers)
	return out
}

func recognizerFor(kind mdstream.TokenKind) (Recognizer, bool) {
	for _, r := range recognizers {
		if r.Kind() == kind {
			return r, true
		}
	}
	return nil, false
}

func prefixed(p string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, p) }
}

var (
	// "[text" or "[text]" still waiting for "(".
	linkTextRe = regexp.MustCompile(`^\[[^\]\n]*\]?$`)
	// "[text](partial-url" without the closing ")".
	linkURLRe = regexp.MustCompile(`^\[[^\]\n]*\]\([^)\s]*$`)
	// "<", "</", "<tag", "<tag attr=..." with no ">" yet.
	htmlRe = regexp.MustCompile(`^</?$|^</?[A-Za-z][A-Za-z0-9-]*(\s[^<>]*)?$`)
	// One alignment cell of a table separator row.
	alignCellRe = regexp.MustCompile(`^:?-+:?$|^:$`)
)

func linkValid(p string) bool {
	return linkTextRe.MatchString(p) || linkURLRe.MatchString(p)
}

func imageValid(p string) bool {
	if p == "!" {
		return true
	}
	return strings.HasPrefix(p, "![") && linkValid(p[1:])
}

func htmlValid(p string) bool {
	return htmlRe.MatchString(p)
}

func isEmphasisMarker(c byte) bool { return c == '*' || c == '_' }

func emphasisStart(p string) bool {
	return p != "" && isEmphasisMarker(p[0])
}

// emphasisValid accepts a run of one to three identical markers that is not
// followed by whitespace and not yet closed by the same run. Emphasis never
// spans lines here so a stray marker cannot hide the rest of a stream.
func emphasisValid(p string) bool {
	if !emphasisStart(p) || strings.ContainsRune(p, '\n') {
		return false
	}
	n := 0
	for n < len(p) && p[n] == p[0] {
		n++
	}
	if n > 3 {
		return false
	}
	rest := p[n:]
	if rest == "" {
		return true
	}
	if r, _ := utf8.DecodeRuneInString(rest); unicode.IsSpace(r) {
		return false
	}
	return !strings.Contains(rest, p[:n])
}

func isBullet(c byte) bool { return c == '-' || c == '+' || c == '*' }

func listStart(p string) bool {
	return p != "" && isBullet(p[0])
}

// listValid accepts a bare bullet, a bullet with its following spaces, and
// a bullet followed by incomplete emphasis such as "- **".
func listValid(p string) bool {
	if !listStart(p) {
		return false
	}
	rest := p[1:]
	if rest == "" {
		return true
	}
	if rest[0] != ' ' {
		return false
	}
	item := strings.TrimLeft(rest, " ")
	if item == "" {
		return len(rest) <= 4
	}
	return emphasisValid(item)
}

// tableValid accepts up to a header, a separator and one data row with no
// blank line, as long as the separator cells seen so far are alignment
// cells.
func tableValid(p string) bool {
	if !strings.HasPrefix(p, "|") || strings.Contains(p, "\n\n") {
		return false
	}
	lines := strings.Split(p, "\n")
	if len(lines) > 3 {
		return false
	}
	if len(lines) >= 2 && !separatorValid(lines[1]) {
		return false
	}
	return true
}

func separatorValid(line string) bool {
	row := strings.Trim(strings.TrimSpace(line), "|")
	for _, cell := range strings.Split(row, "|") {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if !alignCellRe.MatchString(cell) {
			return false
		}
	}
	return true
}
