package html

import (
	"strings"

	"github.com/fwojciec/mdstream"
	"golang.org/x/net/html"
)

// UnclosedTags returns the lower-cased names of registered elements opened
// in html without a matching end tag. An end tag closes the most recent
// open element of that name even when it is not the innermost one, which
// tolerates the overlapping markup of a partial stream. A tag cut off by the
// end of input is ignored.
func UnclosedTags(s string, components mdstream.Components) map[string]bool {
	var stack []string
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.EndTagToken {
			continue
		}
		b, _ := z.TagName()
		name := string(b)
		if !components.Has(name) {
			continue
		}
		if tt == html.StartTagToken {
			stack = append(stack, name)
			continue
		}
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i] == name {
				stack = append(stack[:i], stack[i+1:]...)
				break
			}
		}
	}

	unclosed := make(map[string]bool, len(stack))
	for _, name := range stack {
		unclosed[name] = true
	}
	return unclosed
}
