package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/mdstream"
	mdlipgloss "github.com/fwojciec/mdstream/lipgloss"
)

var _ tea.Model = Model{}

// openFunc opens the Source for one stream. It runs off the UI goroutine
// because providers block on the network.
type openFunc func(ctx context.Context) (mdstream.Source, error)

// startMsg asks the model to start streaming the Source given to New.
type startMsg struct{}

// Model is the Bubble Tea model for the live preview.
type Model struct {
	// Viewport is the scrollable preview area. Exported for test access.
	Viewport viewport.Model
	// Input is the prompt input, shown only when a Provider is configured.
	// Exported for test access.
	Input textinput.Model
	// Spinner animates the status line while streaming.
	Spinner spinner.Model

	pipeline *mdstream.Pipeline
	theme    mdstream.Theme
	styles   Styles
	src      mdstream.Source
	provider mdstream.Provider
	request  mdstream.Request

	nodes    []mdstream.Node
	running  bool
	cancel   context.CancelFunc
	updateCh chan []mdstream.Node
	doneCh   chan DoneMsg
	err      error
	stopped  bool // last stream was cancelled
	ready    bool
}

// Option configures a [Model].
type Option func(*Model)

// WithProvider enables the prompt input. Each submitted prompt opens a new
// stream from p using req with its Prompt replaced.
func WithProvider(p mdstream.Provider, req mdstream.Request) Option {
	return func(m *Model) {
		m.provider = p
		m.request = req
	}
}

// New creates a preview of src rendered through pipeline. Streaming starts
// when the program initializes. src may be nil when a provider is
// configured with WithProvider.
func New(src mdstream.Source, pipeline *mdstream.Pipeline, theme mdstream.Theme, opts ...Option) Model {
	styles := NewStyles(theme)

	ti := textinput.New()
	ti.Placeholder = "Type a prompt..."
	ti.Prompt = ""
	ti.CharLimit = 0

	m := Model{
		Input:    ti,
		Spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Loading)),
		pipeline: pipeline,
		theme:    theme,
		styles:   styles,
		src:      src,
	}
	for _, o := range opts {
		o(&m)
	}
	if m.prompting() {
		m.Input.Focus()
	}
	return m
}

// Running returns whether a stream is in progress.
func (m Model) Running() bool { return m.running }

// Err returns the last stream error, if any. Cancellation is not an error.
func (m Model) Err() error { return m.err }

// Nodes returns the most recently rendered tree.
func (m Model) Nodes() []mdstream.Node { return m.nodes }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.src != nil {
		return func() tea.Msg { return startMsg{} }
	}
	if m.prompting() {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case startMsg:
		src := m.src
		m.src = nil
		return m.start(func(context.Context) (mdstream.Source, error) { return src, nil })

	case UpdateMsg:
		m.nodes = msg.Nodes
		m = m.refresh()
		if m.updateCh != nil {
			return m, listenForUpdate(m.updateCh, m.doneCh)
		}
		return m, nil

	case DoneMsg:
		if m.cancel != nil {
			m.cancel()
		}
		m.running = false
		m.cancel = nil
		m.updateCh = nil
		m.doneCh = nil
		m.stopped = errors.Is(msg.Err, context.Canceled)
		if msg.Err != nil && !m.stopped {
			m.err = msg.Err
		}
		if msg.Nodes != nil {
			m.nodes = msg.Nodes
		}
		m = m.refresh()
		if m.prompting() {
			return m, m.Input.Focus()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if m.prompting() && !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	if m.prompting() {
		b.WriteString("\n")
		b.WriteString(m.Input.View())
	}
	return b.String()
}

func (m Model) prompting() bool { return m.provider != nil }

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	statusHeight := 1
	borderHeight := 1
	if m.prompting() {
		statusHeight++
		borderHeight++
	}
	vpHeight := max(msg.Height-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit
	}

	if !m.prompting() {
		if !m.running && msg.Type == tea.KeyRunes && msg.String() == "q" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.Viewport, cmd = m.Viewport.Update(msg)
		return m, cmd
	}

	if m.running {
		return m, nil
	}
	if msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	}

	// Character keys go only to the input so that j/k type rather than
	// scroll.
	var cmd tea.Cmd
	var cmds []tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit(prompt string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.nodes = nil
	m = m.refresh()

	provider := m.provider
	req := m.request
	req.Prompt = prompt
	return m.start(func(ctx context.Context) (mdstream.Source, error) {
		return provider.Stream(ctx, req)
	})
}

func (m Model) start(open openFunc) (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.updateCh = make(chan []mdstream.Node, 16)
	m.doneCh = make(chan DoneMsg, 1)
	m.running = true
	m.err = nil
	m.stopped = false

	return m, tea.Batch(
		startStream(ctx, m.pipeline, open, m.updateCh, m.doneCh),
		listenForUpdate(m.updateCh, m.doneCh),
		m.Spinner.Tick,
	)
}

// refresh re-renders the current tree into the viewport and follows the
// bottom of the document.
func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(mdlipgloss.Render(m.nodes, m.Viewport.Width, m.theme))
	m.Viewport.GotoBottom()
	return m
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.running:
		return m.Spinner.View() + m.styles.Muted.Render(" Streaming... Ctrl+C to stop")
	}
	var prefix string
	if m.stopped {
		prefix = "Stopped. "
	}
	if m.prompting() {
		return m.styles.Muted.Render(prefix + "Enter to send, Ctrl+C to quit")
	}
	return m.styles.Muted.Render(prefix + "Done. q to quit")
}

// startStream runs the pipeline over the opened Source in a goroutine and
// signals completion.
func startStream(ctx context.Context, p *mdstream.Pipeline, open openFunc, updateCh chan<- []mdstream.Node, doneCh chan<- DoneMsg) tea.Cmd {
	return func() tea.Msg {
		var nodes []mdstream.Node
		src, err := open(ctx)
		if err == nil {
			nodes, err = p.Run(ctx, src, func(n []mdstream.Node) {
				select {
				case updateCh <- n:
				case <-ctx.Done():
				}
			})
		}
		close(updateCh)
		doneCh <- DoneMsg{Nodes: nodes, Err: err}
		return nil
	}
}

// listenForUpdate waits for the next tree from the channel. When the channel
// closes, it reads the result from doneCh.
func listenForUpdate(ch <-chan []mdstream.Node, doneCh <-chan DoneMsg) tea.Cmd {
	return func() tea.Msg {
		nodes, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return UpdateMsg{Nodes: nodes}
	}
}
