package mdstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Classifier turns the cumulative markdown of one stream into display
// markdown with incomplete trailing constructs hidden or replaced by
// placeholders. Implementations hold per-stream state and are not safe for
// concurrent use.
type Classifier interface {
	Classify(text string, hasNextChunk bool) string
	Reset()
}

// Compiler compiles markdown to HTML.
type Compiler interface {
	Compile(markdown string) (string, error)
}

// TreeRenderer sanitizes HTML and builds a node tree from it.
type TreeRenderer interface {
	Render(html string) ([]Node, error)
}

// Pipeline runs classifier, compiler and renderer in that order once per
// update. A Pipeline represents one logical stream because its classifier
// remembers previous updates; the compiler and renderer may be shared.
type Pipeline struct {
	classifier Classifier
	compiler   Compiler
	renderer   TreeRenderer
}

// NewPipeline creates a Pipeline from its three stages.
func NewPipeline(classifier Classifier, compiler Compiler, renderer TreeRenderer) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		compiler:   compiler,
		renderer:   renderer,
	}
}

// Update renders the full cumulative text of the stream. hasNextChunk is
// false for the final update, after which the classifier starts over.
func (p *Pipeline) Update(text string, hasNextChunk bool) ([]Node, error) {
	markdown := p.classifier.Classify(text, hasNextChunk)
	html, err := p.compiler.Compile(markdown)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	nodes, err := p.renderer.Render(html)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return nodes, nil
}

// Reset discards the classifier state, e.g. when the caller abandons a
// stream and starts a new one.
func (p *Pipeline) Reset() {
	p.classifier.Reset()
}

// Run drains src, calling onUpdate with the rendered tree after every delta
// and once more after the stream completes. The final tree is rendered with
// hasNextChunk false. Run closes src before returning. If onUpdate is nil,
// intermediate trees are discarded and only the final tree is returned.
func (p *Pipeline) Run(ctx context.Context, src Source, onUpdate func([]Node)) ([]Node, error) {
	defer src.Close()
	p.classifier.Reset()

	var text strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		delta, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if delta == "" {
			continue
		}
		text.WriteString(delta)
		nodes, err := p.Update(text.String(), true)
		if err != nil {
			return nil, err
		}
		if onUpdate != nil {
			onUpdate(nodes)
		}
	}

	nodes, err := p.Update(text.String(), false)
	if err != nil {
		return nil, err
	}
	if onUpdate != nil {
		onUpdate(nodes)
	}
	return nodes, nil
}
