package mdstream

import (
	"sort"
	"strings"
)

// ComponentProps are the props a registered component is built with.
type ComponentProps struct {
	// Tag is the lower-cased tag name the component was registered under.
	Tag string
	// Attrs are the element's sanitized attributes in source order.
	Attrs []Attr
	// StreamStatus is StatusLoading while the element's closing tag has not
	// arrived yet.
	StreamStatus StreamStatus
	// ClassName merges the className, classname and class attributes.
	ClassName string
	// Children are the already transformed child nodes.
	Children []Node
}

// Attr returns the value of the first attribute named key.
func (p ComponentProps) Attr(key string) (string, bool) {
	return lookupAttr(p.Attrs, key)
}

// Component builds the node that replaces a registered custom element.
type Component interface {
	Build(props ComponentProps) Node
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func(props ComponentProps) Node

// Build calls f(props).
func (f ComponentFunc) Build(props ComponentProps) Node {
	return f(props)
}

// Element returns a Component that builds a *ComponentNode named name.
func Element(name string) Component {
	return ComponentFunc(func(props ComponentProps) Node {
		return &ComponentNode{Name: name, ComponentProps: props}
	})
}

// Components maps lower-cased tag names to the component rendered in their
// place. It is read-only configuration for the duration of a render.
type Components map[string]Component

// Lookup returns the component registered for tag, ignoring case.
func (c Components) Lookup(tag string) (Component, bool) {
	if comp, ok := c[strings.ToLower(tag)]; ok {
		return comp, true
	}
	for name, comp := range c {
		if strings.EqualFold(name, tag) {
			return comp, true
		}
	}
	return nil, false
}

// Has reports whether a component is registered for tag.
func (c Components) Has(tag string) bool {
	_, ok := c.Lookup(tag)
	return ok
}

// Names returns the registered tag names, lower-cased and sorted.
func (c Components) Names() []string {
	names := make([]string, 0, len(c))
	seen := make(map[string]bool, len(c))
	for name := range c {
		lower := strings.ToLower(name)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		names = append(names, lower)
	}
	sort.Strings(names)
	return names
}
