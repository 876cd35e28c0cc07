package mdstream

import "github.com/rivo/uniseg"

// Node is a sealed interface representing one node of a rendered tree.
// The unexported marker method prevents external implementations.
type Node interface {
	node()
}

// StreamStatus reports whether a rendered element may still receive
// streamed content.
type StreamStatus string

const (
	StatusLoading StreamStatus = "loading"
	StatusDone    StreamStatus = "done"
)

// Attr is a single HTML attribute. Keys are lower-case as produced by the
// HTML tokenizer.
type Attr struct {
	Key string
	Val string
}

// TextNode is plain text. Text is unescaped.
type TextNode struct {
	Text string
}

func (*TextNode) node() {}

// ElementNode is an HTML element that is not a registered component.
type ElementNode struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

func (*ElementNode) node() {}

// Attr returns the value of the first attribute named key.
func (n *ElementNode) Attr(key string) (string, bool) {
	return lookupAttr(n.Attrs, key)
}

// AnimatedTextNode is text that a consumer fades in as it streams.
type AnimatedTextNode struct {
	Text      string
	Animation Animation
}

func (*AnimatedTextNode) node() {}

// Graphemes splits Text into user-perceived characters, the unit a
// per-character fade-in animates.
func (n *AnimatedTextNode) Graphemes() []string {
	var out []string
	g := uniseg.NewGraphemes(n.Text)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// ComponentNode is the node built by the stock Element component for a
// registered custom tag.
type ComponentNode struct {
	Name string
	ComponentProps
}

func (*ComponentNode) node() {}

// Interface compliance checks.
var (
	_ Node = (*TextNode)(nil)
	_ Node = (*ElementNode)(nil)
	_ Node = (*AnimatedTextNode)(nil)
	_ Node = (*ComponentNode)(nil)
)

// Walk calls fn for every node in nodes, depth-first, parents before
// children. Returning false from fn skips the node's children.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch n := n.(type) {
		case *ElementNode:
			Walk(n.Children, fn)
		case *ComponentNode:
			Walk(n.Children, fn)
		}
	}
}

func lookupAttr(attrs []Attr, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
