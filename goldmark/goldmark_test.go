package goldmark_test

import (
	"testing"

	"github.com/fwojciec/mdstream/goldmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gm "github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

func compile(t *testing.T, md string, opts ...goldmark.Option) string {
	t.Helper()
	out, err := goldmark.Compile(md, opts...)
	require.NoError(t, err)
	return out
}

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", compile(t, ""))
	})

	t.Run("paragraph", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "<p>hello <strong>world</strong></p>\n", compile(t, "hello **world**"))
	})

	t.Run("wrapper tag", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "hello", goldmark.WithWrapperTag("span"))
		assert.Equal(t, "<span>hello</span>\n", out)
	})

	t.Run("raw html kept", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "a <custom>x</custom>")
		assert.Equal(t, "<p>a <custom>x</custom></p>\n", out)
	})

	t.Run("gfm table", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "| a |\n| - |\n| 1 |")
		assert.Contains(t, out, "<table>")
		assert.Contains(t, out, "<td>1</td>")
	})

	t.Run("strikethrough", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "<p><del>gone</del></p>\n", compile(t, "~~gone~~"))
	})

	t.Run("no linkify", func(t *testing.T) {
		t.Parallel()
		assert.NotContains(t, compile(t, "see https://example.com"), "<a")
	})
}

func TestCompileLinks(t *testing.T) {
	t.Parallel()

	t.Run("default", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "[a](https://x.com)")
		assert.Equal(t, "<p><a href=\"https://x.com\">a</a></p>\n", out)
	})

	t.Run("new tab keeps title", func(t *testing.T) {
		t.Parallel()
		out := compile(t, `[a](https://x.com "T")`, goldmark.WithOpenLinksInNewTab())
		assert.Equal(t, "<p><a href=\"https://x.com\" title=\"T\" target=\"_blank\" rel=\"noopener noreferrer\">a</a></p>\n", out)
	})

	t.Run("dangerous url dropped", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "[a](javascript:alert(1))")
		assert.Contains(t, out, `<a href="">a</a>`)
	})
}

func TestCompileCode(t *testing.T) {
	t.Parallel()

	t.Run("closed fence is done", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "```js\nx\n```")
		assert.Equal(t, "<pre><code data-block=\"true\" data-state=\"done\" class=\"language-js\">x\n</code></pre>\n", out)
	})

	t.Run("open fence is loading", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "```js\nx")
		assert.Contains(t, out, `data-state="loading"`)
		assert.Contains(t, out, `class="language-js"`)
	})

	t.Run("longer closing fence", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, compile(t, "````\nx\n`````"), `data-state="done"`)
	})

	t.Run("mismatched closing fence", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "~~~\nx\n```")
		assert.Contains(t, out, `data-state="loading"`)
		assert.Contains(t, out, "x\n```")
	})

	t.Run("indented code is done", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "    code")
		assert.Contains(t, out, `<pre><code data-block="true" data-state="done">`)
		assert.NotContains(t, out, "language-")
	})

	t.Run("content escaped", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, compile(t, "```\n<b>\n```"), "&lt;b&gt;")
	})
}

func TestCompileRenderFunc(t *testing.T) {
	t.Parallel()

	mermaid := func(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
		n := node.(*ast.FencedCodeBlock)
		if string(n.Language(source)) != "mermaid" {
			return ast.WalkContinue, goldmark.ErrDefault
		}
		if entering {
			_, _ = w.WriteString(`<div class="mermaid">`)
			return ast.WalkSkipChildren, nil
		}
		_, _ = w.WriteString("</div>\n")
		return ast.WalkContinue, nil
	}

	t.Run("override handles its case", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "```mermaid\ngraph\n```", goldmark.WithRenderFunc(ast.KindFencedCodeBlock, mermaid))
		assert.Equal(t, "<div class=\"mermaid\"></div>\n", out)
	})

	t.Run("override defers to built-in", func(t *testing.T) {
		t.Parallel()
		out := compile(t, "```js\nx\n```", goldmark.WithRenderFunc(ast.KindFencedCodeBlock, mermaid))
		assert.Contains(t, out, `data-state="done"`)
	})

	t.Run("override defers to goldmark rule", func(t *testing.T) {
		t.Parallel()
		h1 := func(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
			if node.(*ast.Heading).Level != 1 {
				return ast.WalkContinue, goldmark.ErrDefault
			}
			if entering {
				_, _ = w.WriteString("<h1 class=\"title\">")
			} else {
				_, _ = w.WriteString("</h1>\n")
			}
			return ast.WalkContinue, nil
		}
		out := compile(t, "# A\n\n## B", goldmark.WithRenderFunc(ast.KindHeading, h1))
		assert.Equal(t, "<h1 class=\"title\">A</h1>\n<h2>B</h2>\n", out)
	})
}

func TestCompileExtensions(t *testing.T) {
	t.Parallel()

	out := compile(t, "hi", goldmark.WithExtensions(upperParagraphs{}))
	assert.Equal(t, "<P>hi</P>\n", out)
}

// upperParagraphs overrides the built-in paragraph rule from an extension.
type upperParagraphs struct{}

func (upperParagraphs) Extend(m gm.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(upperParagraphs{}, 100)))
}

func (upperParagraphs) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindParagraph, func(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			_, _ = w.WriteString("<P>")
		} else {
			_, _ = w.WriteString("</P>\n")
		}
		return ast.WalkContinue, nil
	})
}
