package html

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fwojciec/mdstream"
	"golang.org/x/net/html"
)

// Serialize writes nodes back out as HTML. Component nodes are written as
// their registered tag with a data-stream-status attribute, and animated
// text as a span carrying its fade duration.
func Serialize(w io.Writer, nodes []mdstream.Node) error {
	for _, n := range nodes {
		if err := html.Render(w, toHTML(n)); err != nil {
			return fmt.Errorf("html: %w", err)
		}
	}
	return nil
}

func toHTML(n mdstream.Node) *html.Node {
	switch n := n.(type) {
	case *mdstream.TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case *mdstream.AnimatedTextNode:
		span := &html.Node{Type: html.ElementNode, Data: "span", Attr: []html.Attribute{
			{Key: "data-animated", Val: "true"},
			{Key: "data-fade-ms", Val: strconv.FormatInt(n.Animation.FadeDuration.Milliseconds(), 10)},
		}}
		span.AppendChild(&html.Node{Type: html.TextNode, Data: n.Text})
		return span
	case *mdstream.ComponentNode:
		tag := n.Tag
		if tag == "" {
			tag = n.Name
		}
		attrs := append(htmlAttrs(n.Attrs), html.Attribute{Key: "data-stream-status", Val: string(n.StreamStatus)})
		return element(tag, attrs, n.Children)
	case *mdstream.ElementNode:
		return element(n.Tag, htmlAttrs(n.Attrs), n.Children)
	}
	return &html.Node{Type: html.TextNode}
}

func element(tag string, attrs []html.Attribute, children []mdstream.Node) *html.Node {
	el := &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
	if voidElements[tag] {
		return el
	}
	for _, c := range children {
		el.AppendChild(toHTML(c))
	}
	return el
}

func htmlAttrs(attrs []mdstream.Attr) []html.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]html.Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = html.Attribute{Key: a.Key, Val: a.Val}
	}
	return out
}
