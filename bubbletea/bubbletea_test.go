package bubbletea_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/mdstream"
	bt "github.com/fwojciec/mdstream/bubbletea"
	"github.com/fwojciec/mdstream/classify"
	"github.com/fwojciec/mdstream/goldmark"
	"github.com/fwojciec/mdstream/html"
	"github.com/stretchr/testify/require"
)

func newPipeline() *mdstream.Pipeline {
	return mdstream.NewPipeline(classify.New(), goldmark.New(), html.NewRenderer(nil))
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, src mdstream.Source, opts ...bt.Option) bt.Model {
	t.Helper()
	m := bt.New(src, newPipeline(), mdstream.DefaultTheme(), opts...)
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}
