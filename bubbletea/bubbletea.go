// Package bubbletea provides a Bubble Tea live preview of a streaming
// markdown document.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/mdstream"
)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits and returns the final model. The context is used for graceful
// shutdown: when cancelled, the program quits.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	fm, err := p.Run()
	if final, ok := fm.(Model); ok {
		m = final
	}
	return m, err
}

// UpdateMsg carries the node tree rendered after one stream delta.
type UpdateMsg struct {
	Nodes []mdstream.Node
}

// DoneMsg signals that the stream has completed. Nodes is the final tree,
// rendered with no further chunks expected.
type DoneMsg struct {
	Nodes []mdstream.Node
	Err   error
}
