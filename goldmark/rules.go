package goldmark

import (
	"errors"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// funcMap captures the functions a NodeRenderer registers.
type funcMap map[ast.NodeKind]renderer.NodeRendererFunc

func (m funcMap) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	m[kind] = fn
}

// ruleRenderer registers the built-in rules and any caller overrides on
// top of them.
type ruleRenderer struct {
	wrapperTag string
	newTab     bool
	overrides  map[ast.NodeKind]renderer.NodeRendererFunc
	builtins   funcMap
}

func newRuleRenderer(c *Compiler) *ruleRenderer {
	r := &ruleRenderer{
		wrapperTag: c.wrapperTag,
		newTab:     c.newTab,
		overrides:  c.overrides,
		builtins:   funcMap{},
	}
	// goldmark's own rules back every kind a caller may override.
	html.NewRenderer(html.WithUnsafe()).RegisterFuncs(r.builtins)
	r.builtins[ast.KindParagraph] = r.renderParagraph
	r.builtins[ast.KindLink] = r.renderLink
	r.builtins[ast.KindCodeBlock] = r.renderCode
	r.builtins[ast.KindFencedCodeBlock] = r.renderCode
	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *ruleRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	for _, kind := range []ast.NodeKind{ast.KindParagraph, ast.KindLink, ast.KindCodeBlock, ast.KindFencedCodeBlock} {
		reg.Register(kind, r.chain(kind))
	}
	for kind := range r.overrides {
		switch kind {
		case ast.KindParagraph, ast.KindLink, ast.KindCodeBlock, ast.KindFencedCodeBlock:
			continue
		}
		reg.Register(kind, r.chain(kind))
	}
}

func (r *ruleRenderer) chain(kind ast.NodeKind) renderer.NodeRendererFunc {
	override := r.overrides[kind]
	builtin := r.builtins[kind]
	return func(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
		if override != nil {
			status, err := override(w, source, node, entering)
			if !errors.Is(err, ErrDefault) {
				return status, err
			}
		}
		if builtin == nil {
			return ast.WalkContinue, nil
		}
		return builtin(w, source, node, entering)
	}
}

func (r *ruleRenderer) renderParagraph(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if r.wrapperTag == "" {
		if entering {
			_, _ = w.WriteString("<p>")
		} else {
			_, _ = w.WriteString("</p>\n")
		}
		return ast.WalkContinue, nil
	}
	if entering {
		_, _ = w.WriteString("<" + r.wrapperTag + ">")
	} else {
		_, _ = w.WriteString("</" + r.wrapperTag + ">\n")
	}
	return ast.WalkContinue, nil
}

func (r *ruleRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	if !html.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		html.DefaultWriter.Write(w, n.Title)
		_ = w.WriteByte('"')
	}
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.LinkAttributeFilter)
	}
	if r.newTab {
		_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func (r *ruleRenderer) renderCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkContinue, nil
	}

	state := "loading"
	var language []byte
	switch n := node.(type) {
	case *ast.CodeBlock:
		// Indented code has no terminator to wait for.
		state = "done"
	case *ast.FencedCodeBlock:
		if fenceClosed(n) {
			state = "done"
		}
		language = n.Language(source)
	}

	_, _ = w.WriteString(`<pre><code data-block="true" data-state="` + state + `"`)
	if len(language) > 0 {
		_, _ = w.WriteString(` class="language-`)
		html.DefaultWriter.Write(w, language)
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		html.DefaultWriter.RawWrite(w, line.Value(source))
	}
	return ast.WalkSkipChildren, nil
}
