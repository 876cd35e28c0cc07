package classify

import "strings"

// endsInOpenFence reports whether text ends inside a fenced code block.
// A fence is a line starting with three or more backticks or tildes; it is
// closed by a line of the same character with at least as long a run and
// nothing but whitespace after it.
func endsInOpenFence(text string) bool {
	var (
		openChar byte
		openLen  int
	)
	for len(text) > 0 {
		line := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i], text[i+1:]
		} else {
			text = ""
		}
		line = strings.TrimLeft(line, " \t")
		c, n := fenceRun(line)
		if openLen == 0 {
			if n >= 3 && !(c == '`' && strings.ContainsRune(line[n:], '`')) {
				openChar, openLen = c, n
			}
			continue
		}
		if c == openChar && n >= openLen && strings.TrimSpace(line[n:]) == "" {
			openLen = 0
		}
	}
	return openLen > 0
}

// fenceRun returns the fence character line starts with and the length of
// its run, or 0 when line does not start with one.
func fenceRun(line string) (byte, int) {
	if line == "" || (line[0] != '`' && line[0] != '~') {
		return 0, 0
	}
	n := 0
	for n < len(line) && line[n] == line[0] {
		n++
	}
	return line[0], n
}
