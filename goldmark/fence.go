package goldmark

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// fenceClosedAttr marks a FencedCodeBlock whose closing fence was parsed.
const fenceClosedAttr = "mdstreamFenceClosed"

// fenceTracker wraps goldmark's fenced code parser and records on the node
// when the block ends at a closing fence rather than at end of input. The
// wrapped parser closes a fence only on a line of the opening character at
// least as long as the opening run, followed by whitespace.
type fenceTracker struct {
	parser.BlockParser
}

func newFenceTracker() parser.BlockParser {
	return fenceTracker{BlockParser: parser.NewFencedCodeBlockParser()}
}

func (p fenceTracker) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	state := p.BlockParser.Continue(node, reader, pc)
	if state&parser.Close != 0 {
		node.SetAttributeString(fenceClosedAttr, true)
	}
	return state
}

func fenceClosed(n *ast.FencedCodeBlock) bool {
	v, ok := n.AttributeString(fenceClosedAttr)
	if !ok {
		return false
	}
	closed, _ := v.(bool)
	return closed
}
