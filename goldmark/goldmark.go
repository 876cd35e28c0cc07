// Package goldmark compiles display markdown to HTML using goldmark, with
// paragraph, link and code rules that carry streaming state.
//
// Fenced code blocks are emitted with data-state="done" only once their
// closing fence has been parsed, so a renderer can show a code block that is
// still streaming differently from a finished one.
package goldmark

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fwojciec/mdstream"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrDefault is returned by a render func passed to [WithRenderFunc] to
// defer to the built-in rule for that node.
var ErrDefault = errors.New("goldmark: use default rule")

const (
	// rulePriority beats goldmark's HTML renderer (1000) and leaves room for
	// caller extensions below it.
	rulePriority = 200
	// fencePriority makes the tracking parser open fences before goldmark's
	// own fenced code parser (700).
	fencePriority = 699
)

// Interface compliance check.
var _ mdstream.Compiler = (*Compiler)(nil)

// Compiler implements [mdstream.Compiler]. It is safe for concurrent use.
type Compiler struct {
	md         goldmark.Markdown
	wrapperTag string
	newTab     bool
	overrides  map[ast.NodeKind]renderer.NodeRendererFunc
	extensions []goldmark.Extender
}

// Option configures a [Compiler].
type Option func(*Compiler)

// WithWrapperTag replaces the <p> paragraph wrapper with tag.
func WithWrapperTag(tag string) Option {
	return func(c *Compiler) { c.wrapperTag = tag }
}

// WithOpenLinksInNewTab adds target="_blank" rel="noopener noreferrer" to
// every link.
func WithOpenLinksInNewTab() Option {
	return func(c *Compiler) { c.newTab = true }
}

// WithRenderFunc layers fn over the rule for kind. fn runs first; returning
// [ErrDefault] hands the node to the built-in rule, so a caller can take
// over a single case without reimplementing the whole rule.
func WithRenderFunc(kind ast.NodeKind, fn renderer.NodeRendererFunc) Option {
	return func(c *Compiler) { c.overrides[kind] = fn }
}

// WithExtensions registers goldmark extensions after the compiler's own.
// Node renderers registered with a priority below 200 take precedence over
// the built-in rules.
func WithExtensions(exts ...goldmark.Extender) Option {
	return func(c *Compiler) { c.extensions = append(c.extensions, exts...) }
}

// New creates a new [Compiler].
func New(opts ...Option) *Compiler {
	c := &Compiler{overrides: make(map[ast.NodeKind]renderer.NodeRendererFunc)}
	for _, o := range opts {
		o(c)
	}

	rules := newRuleRenderer(c)
	exts := append([]goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
	}, c.extensions...)

	c.md = goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithBlockParsers(util.Prioritized(newFenceTracker(), fencePriority)),
		),
		goldmark.WithRendererOptions(
			// Raw HTML is kept; sanitizing is the tree renderer's job.
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(rules, rulePriority)),
		),
	)
	return c
}

// Compile converts markdown to HTML.
func (c *Compiler) Compile(markdown string) (string, error) {
	if markdown == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("goldmark: %w", err)
	}
	return buf.String(), nil
}

// Compile converts markdown to HTML with a one-off [Compiler].
func Compile(markdown string, opts ...Option) (string, error) {
	return New(opts...).Compile(markdown)
}
