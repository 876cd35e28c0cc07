package mdstream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/classify"
	"github.com/fwojciec/mdstream/goldmark"
	"github.com/fwojciec/mdstream/html"
	"github.com/fwojciec/mdstream/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo returns doubles that record the stage inputs.
func echo(calls *[]string) (*mock.Classifier, *mock.Compiler, *mock.TreeRenderer) {
	c := &mock.Classifier{ClassifyFn: func(text string, hasNextChunk bool) string {
		if hasNextChunk {
			*calls = append(*calls, "classify:"+text)
		} else {
			*calls = append(*calls, "final:"+text)
		}
		return text
	}}
	comp := &mock.Compiler{CompileFn: func(md string) (string, error) {
		return "<" + md + ">", nil
	}}
	r := &mock.TreeRenderer{RenderFn: func(html string) ([]mdstream.Node, error) {
		return []mdstream.Node{&mdstream.TextNode{Text: html}}, nil
	}}
	return c, comp, r
}

func TestPipeline_Update(t *testing.T) {
	t.Parallel()

	t.Run("stages run forward", func(t *testing.T) {
		t.Parallel()
		var calls []string
		p := mdstream.NewPipeline(echo(&calls))
		nodes, err := p.Update("a", true)
		require.NoError(t, err)
		assert.Equal(t, []mdstream.Node{&mdstream.TextNode{Text: "<a>"}}, nodes)
		assert.Equal(t, []string{"classify:a"}, calls)
	})

	t.Run("compile error wrapped", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("boom")
		var calls []string
		c, _, r := echo(&calls)
		comp := &mock.Compiler{CompileFn: func(string) (string, error) { return "", wantErr }}
		_, err := mdstream.NewPipeline(c, comp, r).Update("a", true)
		assert.ErrorIs(t, err, wantErr)
		assert.Contains(t, err.Error(), "compile")
	})

	t.Run("render error wrapped", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("boom")
		var calls []string
		c, comp, _ := echo(&calls)
		r := &mock.TreeRenderer{RenderFn: func(string) ([]mdstream.Node, error) { return nil, wantErr }}
		_, err := mdstream.NewPipeline(c, comp, r).Update("a", true)
		assert.ErrorIs(t, err, wantErr)
		assert.Contains(t, err.Error(), "render")
	})

	t.Run("reset delegates", func(t *testing.T) {
		t.Parallel()
		var reset bool
		var calls []string
		c, comp, r := echo(&calls)
		c.ResetFn = func() { reset = true }
		mdstream.NewPipeline(c, comp, r).Reset()
		assert.True(t, reset)
	})
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	t.Run("cumulative updates then final", func(t *testing.T) {
		t.Parallel()
		var calls []string
		p := mdstream.NewPipeline(echo(&calls))
		var closed bool
		src := mock.Deltas("a", "", "b")
		src.CloseFn = func() error { closed = true; return nil }

		var updates int
		nodes, err := p.Run(context.Background(), src, func([]mdstream.Node) { updates++ })
		require.NoError(t, err)
		assert.Equal(t, []string{"classify:a", "classify:ab", "final:ab"}, calls)
		assert.Equal(t, 3, updates)
		assert.Equal(t, []mdstream.Node{&mdstream.TextNode{Text: "<ab>"}}, nodes)
		assert.True(t, closed)
	})

	t.Run("source error stops run", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("network")
		var calls []string
		p := mdstream.NewPipeline(echo(&calls))
		src := &mock.Source{NextFn: func() (string, error) { return "", wantErr }}
		_, err := p.Run(context.Background(), src, nil)
		assert.ErrorIs(t, err, wantErr)
		assert.Empty(t, calls)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var calls []string
		p := mdstream.NewPipeline(echo(&calls))
		_, err := p.Run(ctx, mock.Deltas("a"), nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPipeline_EndToEnd(t *testing.T) {
	t.Parallel()

	newPipeline := func(components mdstream.Components) *mdstream.Pipeline {
		return mdstream.NewPipeline(
			classify.New(classify.WithPlaceholders(components, nil)),
			goldmark.New(),
			html.NewRenderer(components),
		)
	}

	t.Run("incomplete link becomes placeholder", func(t *testing.T) {
		t.Parallel()
		components := mdstream.Components{"incomplete-link": mdstream.Element("incomplete-link")}
		nodes, err := newPipeline(components).Update("[incomplete link](https://example", true)
		require.NoError(t, err)

		var placeholder *mdstream.ComponentNode
		mdstream.Walk(nodes, func(n mdstream.Node) bool {
			if c, ok := n.(*mdstream.ComponentNode); ok {
				placeholder = c
			}
			return true
		})
		require.NotNil(t, placeholder)
		raw, ok := placeholder.Attr("data-raw")
		assert.True(t, ok)
		assert.Equal(t, "%5Bincomplete%20link%5D(https%3A%2F%2Fexample", raw)
		assert.Equal(t, mdstream.StatusDone, placeholder.StreamStatus)
	})

	t.Run("open fence renders loading code", func(t *testing.T) {
		t.Parallel()
		nodes, err := newPipeline(nil).Update("```js\nconsole.log(1)", true)
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		pre := nodes[0].(*mdstream.ElementNode)
		code := pre.Children[0].(*mdstream.ElementNode)
		state, _ := code.Attr("data-state")
		assert.Equal(t, "loading", state)
		assert.Equal(t, []mdstream.Node{&mdstream.TextNode{Text: "console.log(1)"}}, code.Children)
	})

	t.Run("custom element streams to done", func(t *testing.T) {
		t.Parallel()
		components := mdstream.Components{"custom": mdstream.Element("custom")}
		p := newPipeline(components)
		status := func(nodes []mdstream.Node) mdstream.StreamStatus {
			var s mdstream.StreamStatus
			mdstream.Walk(nodes, func(n mdstream.Node) bool {
				if c, ok := n.(*mdstream.ComponentNode); ok {
					s = c.StreamStatus
				}
				return true
			})
			return s
		}

		nodes, err := p.Update("<custom>\nhi", true)
		require.NoError(t, err)
		assert.Equal(t, mdstream.StatusLoading, status(nodes))

		nodes, err = p.Update("<custom>\nhi\n</custom>", false)
		require.NoError(t, err)
		assert.Equal(t, mdstream.StatusDone, status(nodes))
	})
}
