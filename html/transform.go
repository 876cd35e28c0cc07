package html

import (
	"strings"

	"github.com/fwojciec/mdstream"
)

// classAttrs are merged into ComponentProps.ClassName in this order.
var classAttrs = []string{"className", "classname", "class"}

// transformer converts a parsed tree into new mdstream nodes.
type transformer struct {
	components mdstream.Components
	animation  mdstream.Animation
	unclosed   map[string]bool
}

func (t transformer) nodes(raw []*rawNode, inComponent bool) []mdstream.Node {
	var out []mdstream.Node
	for _, n := range raw {
		if node := t.node(n, inComponent); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// node converts n. inComponent reports whether n's parent is a registered
// component, whose children are left as plain text.
func (t transformer) node(n *rawNode, inComponent bool) mdstream.Node {
	if n.tag == "" {
		if t.animation.Enabled && !inComponent && strings.TrimSpace(n.text) != "" {
			return &mdstream.AnimatedTextNode{Text: n.text, Animation: t.animation}
		}
		return &mdstream.TextNode{Text: n.text}
	}

	comp, ok := t.components.Lookup(n.tag)
	children := t.nodes(n.children, ok)
	if !ok {
		return &mdstream.ElementNode{Tag: n.tag, Attrs: n.attrs, Children: children}
	}

	status := mdstream.StatusDone
	if t.unclosed[n.tag] {
		status = mdstream.StatusLoading
	}
	// A component may return nil to drop the element.
	return comp.Build(mdstream.ComponentProps{
		Tag:          n.tag,
		Attrs:        n.attrs,
		StreamStatus: status,
		ClassName:    MergeClassName(n.attrs),
		Children:     children,
	})
}

// MergeClassName joins the className, classname and class attributes in
// that order, splitting on whitespace and dropping duplicates.
func MergeClassName(attrs []mdstream.Attr) string {
	var classes []string
	seen := make(map[string]bool)
	for _, key := range classAttrs {
		for _, a := range attrs {
			if a.Key != key {
				continue
			}
			for _, c := range strings.Fields(a.Val) {
				if seen[c] {
					continue
				}
				seen[c] = true
				classes = append(classes, c)
			}
		}
	}
	return strings.Join(classes, " ")
}
