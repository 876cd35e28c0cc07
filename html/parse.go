package html

import (
	"errors"
	"io"
	"strings"

	"github.com/fwojciec/mdstream"
	"golang.org/x/net/html"
)

// voidElements never have children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// rawNode is a parsed element or, when tag is empty, a text node.
type rawNode struct {
	tag      string
	text     string
	attrs    []mdstream.Attr
	children []*rawNode
}

// parse builds a tree that stays as close to the source as possible: no
// implied html, head or body elements and no reparenting. Self-closing tags
// and void elements are leaves, an end tag closes the most recent open
// element of that name, and elements still open at the end of input end
// there. Comments and doctypes are dropped.
func parse(s string) ([]*rawNode, error) {
	root := &rawNode{}
	stack := []*rawNode{root}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return root.children, nil
		case html.TextToken:
			top := stack[len(stack)-1]
			text := z.Token().Data
			// Adjacent text tokens are one text node.
			if last := len(top.children) - 1; last >= 0 && top.children[last].tag == "" {
				top.children[last].text += text
				continue
			}
			top.children = append(top.children, &rawNode{text: text})
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			n := &rawNode{tag: tok.Data, attrs: convertAttrs(tok.Attr)}
			top := stack[len(stack)-1]
			top.children = append(top.children, n)
			if tt == html.StartTagToken && !voidElements[tok.Data] {
				stack = append(stack, n)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].tag == string(name) {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

func convertAttrs(attrs []html.Attribute) []mdstream.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]mdstream.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = mdstream.Attr{Key: a.Key, Val: a.Val}
	}
	return out
}
