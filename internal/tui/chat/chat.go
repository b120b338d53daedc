// ABOUTME: Full-screen AI chat built on bubbletea
// ABOUTME: Scrollable transcript, single-line input, spinner while the assistant replies

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/client"
	"github.com/PrathikReddy560/SpendX/internal/tui/styles"
)

// Sender delivers a chat message. *api.Client satisfies it.
type Sender interface {
	Chat(ctx context.Context, message, conversationID string) (*api.ChatResponse, error)
}

// replyMsg carries the assistant's answer back into Update.
type replyMsg struct {
	resp *api.ChatResponse
	err  error
}

const (
	roleUser      = "user"
	roleAssistant = "assistant"
	chromeHeight  = 5
)

// Model is the chat screen.
type Model struct {
	ctx    context.Context
	sender Sender

	input    textinput.Model
	view     viewport.Model
	spin     spinner.Model
	messages []api.ChatMessage

	conversationID string
	waiting        bool
	err            error
	width          int
}

// New returns a chat screen. A non-empty conversationID continues that
// conversation; history is shown above the prompt.
func New(ctx context.Context, sender Sender, conversationID string, history []api.ChatMessage) *Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your spending..."
	ti.CharLimit = 2000
	ti.Width = 60
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	m := &Model{
		ctx:            ctx,
		sender:         sender,
		input:          ti,
		view:           viewport.New(80, 20),
		spin:           sp,
		messages:       append([]api.ChatMessage(nil), history...),
		conversationID: conversationID,
		width:          80,
	}
	m.refresh()
	return m
}

// ConversationID is the conversation the screen is attached to, once known.
func (m *Model) ConversationID() string {
	return m.conversationID
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.view.Width = msg.Width
		m.view.Height = max(1, msg.Height-chromeHeight)
		m.input.Width = max(10, msg.Width-4)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.conversationID = msg.resp.ConversationID
		m.messages = append(m.messages, msg.resp.Message)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}
	m.input.Reset()
	m.err = nil
	m.waiting = true
	m.messages = append(m.messages, api.ChatMessage{Role: roleUser, Content: text})
	m.refresh()
	return m, tea.Batch(m.send(text), m.spin.Tick)
}

func (m *Model) send(text string) tea.Cmd {
	ctx, sender, conv := m.ctx, m.sender, m.conversationID
	return func() tea.Msg {
		resp, err := sender.Chat(ctx, text, conv)
		return replyMsg{resp: resp, err: err}
	}
}

func (m *Model) refresh() {
	m.view.SetContent(m.transcript())
	m.view.GotoBottom()
}

func (m *Model) transcript() string {
	if len(m.messages) == 0 {
		return styles.Subtitle.Render("Ask anything about your budget, spending or savings.")
	}
	wrap := lipgloss.NewStyle().Width(max(20, m.width-2))
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == roleUser {
			b.WriteString(styles.UserMessage.Render("You"))
		} else {
			b.WriteString(styles.StatusOK.Render("SpendX AI"))
		}
		b.WriteString("\n")
		b.WriteString(styles.AssistantMessage.Inherit(wrap).Render(msg.Content))
	}
	return b.String()
}

// View implements tea.Model
func (m *Model) View() string {
	var status string
	switch {
	case m.waiting:
		status = m.spin.View() + " " + styles.Subtitle.Render("Thinking...")
	case m.err != nil:
		status = styles.StatusCritical.Render(client.MessageOf(m.err))
	}
	help := styles.Help.Render("enter send • pgup/pgdn scroll • esc quit")
	return m.view.View() + "\n" + status + "\n" + m.input.View() + "\n" + help
}
