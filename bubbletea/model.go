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
	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/ansi"
	"github.com/fwojciec/chatstream/goldmark"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model
	// Spinner animates the status line while a reply streams.
	Spinner spinner.Model

	chat   ChatFunc
	conv   *chatstream.Conversation
	model  string
	theme  chatstream.Theme
	styles Styles
	cache  *renderCache

	// streaming holds reply text received so far for the running turn.
	streaming string

	running bool
	cancel  context.CancelFunc
	deltaCh chan string
	doneCh  chan DoneMsg
	err     error
	ready   bool
}

// New creates a TUI Model that sends conv to chat. An empty model name
// falls back to the conversation's model.
func New(chat ChatFunc, conv *chatstream.Conversation, model string, theme chatstream.Theme) Model {
	styles := NewStyles(theme)

	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Accent))

	return Model{
		Input:   ti,
		Spinner: sp,
		chat:    chat,
		conv:    conv,
		model:   model,
		theme:   theme,
		styles:  styles,
		cache:   newRenderCache(),
	}
}

// Running returns whether a reply is currently streaming.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case DeltaMsg:
		m.streaming += msg.Text
		m = m.refresh()
		if m.deltaCh != nil {
			return m, listenForDelta(m.deltaCh, m.doneCh)
		}
		return m, nil

	case DoneMsg:
		m.running = false
		m.cancel = nil
		m.deltaCh = nil
		m.doneCh = nil
		m.streaming = ""
		canceled := errors.Is(msg.Err, context.Canceled)
		if msg.Err != nil && !canceled {
			m.err = msg.Err
		}
		if content := msg.Completion.String(); content != "" && (msg.Err == nil || canceled) {
			m.conv.Append(chatstream.AssistantMessage(content))
		}
		m = m.refresh()
		cmds = append(cmds, m.Input.Focus())
		return m, tea.Batch(cmds...)
	}

	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
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
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

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
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)
	}

	// Character keys go to the input only; 'j' and 'k' are both text and
	// viewport scroll bindings.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil

	m.conv.Append(chatstream.UserMessage(text))
	args := m.conv.Arguments(m.model)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.deltaCh = make(chan string, 256)
	m.doneCh = make(chan DoneMsg, 1)
	m.running = true
	m = m.refresh()

	return m, tea.Batch(
		startChat(ctx, m.chat, args, m.deltaCh, m.doneCh),
		listenForDelta(m.deltaCh, m.doneCh),
		m.Spinner.Tick,
	)
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

// renderContent lays out the conversation. Completed assistant replies are
// rendered as markdown; the reply in flight is plain wrapped text. Message
// text is sanitized before it reaches the terminal.
func (m Model) renderContent() string {
	width := m.Viewport.Width
	var parts []string
	for i, msg := range m.conv.Messages {
		switch msg.Role {
		case chatstream.RoleUser:
			parts = append(parts, m.styles.UserMsg.Render("> ")+wrap(ansi.Sanitize(msg.Content), width-2))
		case chatstream.RoleAssistant:
			parts = append(parts, m.cache.render(i, msg.Content, width, m.theme))
		}
	}
	if m.streaming != "" {
		parts = append(parts, wrap(ansi.Sanitize(m.streaming), width))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		return m.Spinner.View() + " " + m.styles.Muted.Render("Generating... (Ctrl+C to stop)")
	}
	model := m.model
	if model == "" {
		model = m.conv.Model
	}
	if model == "" {
		return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
	}
	return m.styles.Accent.Render(model) + " " + m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
}

// renderCache holds markdown output of completed replies for one width.
type renderCache struct {
	width   int
	entries map[int]string
}

func newRenderCache() *renderCache {
	return &renderCache{entries: make(map[int]string)}
}

func (c *renderCache) render(index int, source string, width int, theme chatstream.Theme) string {
	if width != c.width {
		clear(c.entries)
		c.width = width
	}
	if out, ok := c.entries[index]; ok {
		return out
	}
	out := strings.TrimRight(goldmark.Render(ansi.Sanitize(source), width, theme), "\n")
	c.entries[index] = out
	return out
}

// startChat streams one reply in the returned command and signals completion.
func startChat(ctx context.Context, chat ChatFunc, args chatstream.ChatArguments, deltaCh chan<- string, doneCh chan<- DoneMsg) tea.Cmd {
	return func() tea.Msg {
		done := streamReply(ctx, chat, args, func(s string) {
			select {
			case deltaCh <- s:
			case <-ctx.Done():
			}
		})
		close(deltaCh)
		doneCh <- done
		return nil
	}
}

func streamReply(ctx context.Context, chat ChatFunc, args chatstream.ChatArguments, onDelta func(string)) DoneMsg {
	stream, err := chat(ctx, args)
	if err != nil {
		return DoneMsg{Err: err}
	}
	defer stream.Close()

	var acc chatstream.Accumulator
	for chunk, err := range chatstream.Chunks(stream) {
		if err != nil {
			return DoneMsg{Completion: acc.Completion(), Err: err}
		}
		acc.Add(chunk)
		if s := chunk.Content(); s != "" {
			onDelta(s)
		}
	}
	return DoneMsg{Completion: acc.Completion()}
}

// listenForDelta waits for the next delta. When the channel closes, it
// returns the DoneMsg from doneCh.
func listenForDelta(ch <-chan string, doneCh <-chan DoneMsg) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return DeltaMsg{Text: s}
	}
}
