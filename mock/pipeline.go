package mock

import "github.com/fwojciec/mdstream"

// Interface compliance checks.
var (
	_ mdstream.Classifier   = (*Classifier)(nil)
	_ mdstream.Compiler     = (*Compiler)(nil)
	_ mdstream.TreeRenderer = (*TreeRenderer)(nil)
	_ mdstream.Sanitizer    = (*Sanitizer)(nil)
)

// Classifier is a test double for mdstream.Classifier.
// ResetFn is nil-safe.
type Classifier struct {
	ClassifyFn func(text string, hasNextChunk bool) string
	ResetFn    func()
}

// Classify delegates to ClassifyFn.
func (c *Classifier) Classify(text string, hasNextChunk bool) string {
	return c.ClassifyFn(text, hasNextChunk)
}

// Reset delegates to ResetFn. Does nothing when ResetFn is not set.
func (c *Classifier) Reset() {
	if c.ResetFn != nil {
		c.ResetFn()
	}
}

// Compiler is a test double for mdstream.Compiler.
type Compiler struct {
	CompileFn func(markdown string) (string, error)
}

// Compile delegates to CompileFn.
func (c *Compiler) Compile(markdown string) (string, error) {
	return c.CompileFn(markdown)
}

// TreeRenderer is a test double for mdstream.TreeRenderer.
type TreeRenderer struct {
	RenderFn func(html string) ([]mdstream.Node, error)
}

// Render delegates to RenderFn.
func (r *TreeRenderer) Render(html string) ([]mdstream.Node, error) {
	return r.RenderFn(html)
}

// Sanitizer is a test double for mdstream.Sanitizer.
type Sanitizer struct {
	SanitizeFn func(html string) string
}

// Sanitize delegates to SanitizeFn.
func (s *Sanitizer) Sanitize(html string) string {
	return s.SanitizeFn(html)
}
