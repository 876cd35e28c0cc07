package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/mdstream"
	bt "github.com/fwojciec/mdstream/bubbletea"
	"github.com/fwojciec/mdstream/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	m := bt.New(mock.Deltas("hi"), newPipeline(), mdstream.DefaultTheme())
	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
	assert.Empty(t, m.Nodes())
	assert.Equal(t, "Initializing...", m.View())
	assert.NotNil(t, m.Init())
}

func TestModel_Update(t *testing.T) {
	t.Parallel()

	t.Run("window size initializes viewport", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil)
		assert.Equal(t, 80, m.Viewport.Width)
		assert.Equal(t, 22, m.Viewport.Height) // 24 - status(1) - border(1)
		assert.Contains(t, m.View(), "Done. q to quit")
	})

	t.Run("prompt mode reserves input line", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil, bt.WithProvider(&mock.Provider{}, mdstream.Request{}))
		assert.Equal(t, 20, m.Viewport.Height)
		assert.Contains(t, m.View(), "Enter to send")
	})

	t.Run("resize updates viewport dimensions", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil)
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
		assert.Equal(t, 120, m.Viewport.Width)
		assert.Equal(t, 38, m.Viewport.Height)
	})

	t.Run("update message renders tree", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil)
		nodes, err := newPipeline().Update("# Title\n\nbody text", false)
		require.NoError(t, err)
		m = updateModel(t, m, bt.UpdateMsg{Nodes: nodes})
		assert.Equal(t, nodes, m.Nodes())
		view := m.Viewport.View()
		assert.Contains(t, view, "Title")
		assert.Contains(t, view, "body text")
	})

	t.Run("done with error sets err", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil)
		m = updateModel(t, m, bt.DoneMsg{Err: errors.New("boom")})
		assert.EqualError(t, m.Err(), "boom")
		assert.Contains(t, m.View(), "Error: boom")
	})

	t.Run("cancellation is not an error", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil)
		m = updateModel(t, m, bt.DoneMsg{Err: context.Canceled})
		assert.NoError(t, m.Err())
		assert.Contains(t, m.View(), "Stopped. Done. q to quit")
	})

	t.Run("done keeps last tree when final is nil", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil)
		nodes := []mdstream.Node{&mdstream.TextNode{Text: "x"}}
		m = updateModel(t, m, bt.UpdateMsg{Nodes: nodes})
		m = updateModel(t, m, bt.DoneMsg{})
		assert.Equal(t, nodes, m.Nodes())
	})

	t.Run("ctrl+c when idle quits", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("q when idle quits", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("q is typed in prompt mode", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil, bt.WithProvider(&mock.Provider{}, mdstream.Request{}))
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		assert.Equal(t, "q", m.Input.Value())
	})

	t.Run("enter with empty prompt does nothing", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nil, bt.WithProvider(&mock.Provider{}, mdstream.Request{}))
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.False(t, m.Running())
	})
}

func TestModel_Integration(t *testing.T) {
	t.Parallel()

	t.Run("streams source to final tree", func(t *testing.T) {
		t.Parallel()

		src := mock.Deltas("# Title\n\n", "Some **bold", "** text\n\n```go\nfunc main() {}\n```\n")
		m := bt.New(src, newPipeline(), mdstream.DefaultTheme())
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Title")) &&
				bytes.Contains(out, []byte("func main() {}")) &&
				bytes.Contains(out, []byte("Done. q to quit"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.NoError(t, final.Err())

		var state string
		mdstream.Walk(final.Nodes(), func(n mdstream.Node) bool {
			if el, ok := n.(*mdstream.ElementNode); ok && el.Tag == "code" {
				state, _ = el.Attr("data-state")
			}
			return true
		})
		assert.Equal(t, "done", state)
	})

	t.Run("source error shown in status line", func(t *testing.T) {
		t.Parallel()

		calls := 0
		src := &mock.Source{NextFn: func() (string, error) {
			calls++
			if calls == 1 {
				return "partial", nil
			}
			return "", errors.New("connection reset")
		}}
		m := bt.New(src, newPipeline(), mdstream.DefaultTheme())
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Error: connection reset"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.EqualError(t, final.Err(), "connection reset")
		assert.NotEmpty(t, final.Nodes())
	})

	t.Run("prompt opens provider stream", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var got mdstream.Request
		provider := &mock.Provider{StreamFn: func(_ context.Context, req mdstream.Request) (mdstream.Source, error) {
			mu.Lock()
			got = req
			mu.Unlock()
			return mock.Deltas("Hello ", "from the model"), nil
		}}
		m := bt.New(nil, newPipeline(), mdstream.DefaultTheme(),
			bt.WithProvider(provider, mdstream.Request{Model: "test-model", MaxTokens: 10}))
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("from the model"))
		}, teatest.WithDuration(5*time.Second))

		require.NoError(t, tm.Quit())

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.NoError(t, final.Err())

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, mdstream.Request{Model: "test-model", MaxTokens: 10, Prompt: "hi"}, got)
	})

	t.Run("ctrl+c while streaming cancels", func(t *testing.T) {
		t.Parallel()

		provider := &mock.Provider{StreamFn: func(ctx context.Context, _ mdstream.Request) (mdstream.Source, error) {
			sent := false
			return &mock.Source{NextFn: func() (string, error) {
				if !sent {
					sent = true
					return "partial answer", nil
				}
				<-ctx.Done()
				return "", ctx.Err()
			}}, nil
		}}
		m := bt.New(nil, newPipeline(), mdstream.DefaultTheme(), bt.WithProvider(provider, mdstream.Request{}))
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		tm.Type("go")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("partial answer"))
		}, teatest.WithDuration(5*time.Second))

		// First ctrl+c cancels the stream, second quits.
		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Stopped. Enter to send"))
		}, teatest.WithDuration(5*time.Second))
		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.NoError(t, final.Err())
		assert.NotEmpty(t, final.Nodes())
	})

	t.Run("provider error shown", func(t *testing.T) {
		t.Parallel()

		provider := &mock.Provider{StreamFn: func(context.Context, mdstream.Request) (mdstream.Source, error) {
			return nil, io.ErrUnexpectedEOF
		}}
		m := bt.New(nil, newPipeline(), mdstream.DefaultTheme(), bt.WithProvider(provider, mdstream.Request{}))
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		tm.Type("go")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("unexpected EOF"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.ErrorIs(t, final.Err(), io.ErrUnexpectedEOF)
	})
}
