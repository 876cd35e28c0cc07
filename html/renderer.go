// Package html turns compiled HTML into mdstream node trees.
//
// HTML is first scanned for registered custom elements that have not been
// closed yet, then sanitized against an allow-list, tokenized with
// golang.org/x/net/html into a tree that mirrors the source, and finally
// transformed into mdstream nodes.
package html

import (
	"fmt"

	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/bluemonday"
)

// Interface compliance check.
var _ mdstream.TreeRenderer = (*Renderer)(nil)

// Renderer implements [mdstream.TreeRenderer]. It holds no per-render state
// and is safe for concurrent use.
type Renderer struct {
	components mdstream.Components
	config     mdstream.SanitizerConfig
	animation  mdstream.Animation
	sanitizer  mdstream.Sanitizer
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithSanitizerConfig sets caller allow-list additions. They are merged with
// the registered component names, see [MergeSanitizerConfig].
func WithSanitizerConfig(cfg mdstream.SanitizerConfig) Option {
	return func(r *Renderer) { r.config = cfg }
}

// WithAnimation enables animated text nodes when a.Enabled is set.
func WithAnimation(a mdstream.Animation) Option {
	return func(r *Renderer) { r.animation = a }
}

// WithSanitizer replaces the bluemonday sanitizer. The merged sanitizer
// config is then only used for the caller's own bookkeeping.
func WithSanitizer(s mdstream.Sanitizer) Option {
	return func(r *Renderer) { r.sanitizer = s }
}

// NewRenderer creates a new [Renderer] for the given component registry.
func NewRenderer(components mdstream.Components, opts ...Option) *Renderer {
	r := &Renderer{components: components}
	for _, o := range opts {
		o(r)
	}
	r.config = MergeSanitizerConfig(components, r.config)
	if r.sanitizer == nil {
		r.sanitizer = bluemonday.New(r.config)
	}
	return r
}

// SanitizerConfig returns the merged allow-list the renderer sanitizes with.
func (r *Renderer) SanitizerConfig() mdstream.SanitizerConfig {
	return r.config
}

// Render converts html into a node tree.
func (r *Renderer) Render(html string) ([]mdstream.Node, error) {
	if html == "" {
		return nil, nil
	}
	unclosed := UnclosedTags(html, r.components)
	tree, err := parse(r.sanitizer.Sanitize(html))
	if err != nil {
		return nil, fmt.Errorf("parsing sanitized html: %w", err)
	}
	t := transformer{components: r.components, animation: r.animation, unclosed: unclosed}
	return t.nodes(tree, false), nil
}
