package reviewgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

var (
	colorBorder = lipgloss.Color("#3F4451")
	colorTitle  = lipgloss.Color("#C678DD")
	colorWarn   = lipgloss.Color("#E5C07B")
	colorMuted  = lipgloss.Color("#636B78")
	colorPrompt = lipgloss.Color("#61AFEF")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true).
			PaddingLeft(1)

	draftStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorWarn).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingLeft(1)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorPrompt)
)

type keyMap struct {
	Approve key.Binding
	Reject  key.Binding
	Cancel  key.Binding
	Submit  key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Approve: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reject")),
		Cancel:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send feedback")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
	}
}

// reviewModel is the bubbletea model for one draft
type reviewModel struct {
	req      output.ReviewRequest
	keys     keyMap
	viewport viewport.Model
	feedback textinput.Model
	typing   bool
	ready    bool

	verdict *review.Verdict
}

func newReviewModel(req output.ReviewRequest) reviewModel {
	ti := textinput.New()
	ti.Placeholder = "What should change?"
	ti.Prompt = "feedback ❯ "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 0
	ti.Width = 70

	vp := viewport.New(80, 16)
	vp.SetContent(req.Draft)

	return reviewModel{
		req:      req,
		keys:     defaultKeyMap(),
		viewport: vp,
		feedback: ti,
	}
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-8-len(m.req.Warnings), 3)
		m.feedback.Width = max(msg.Width-14, 10)
		m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(m.req.Draft))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m.decide(review.Cancel())
		}
		if m.typing {
			switch {
			case key.Matches(msg, m.keys.Submit):
				return m.decide(review.Reject(m.feedback.Value()))
			case key.Matches(msg, m.keys.Back):
				m.typing = false
				m.feedback.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.feedback, cmd = m.feedback.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Approve):
			return m.decide(review.Approve(""))
		case key.Matches(msg, m.keys.Cancel):
			return m.decide(review.Cancel())
		case key.Matches(msg, m.keys.Reject):
			m.typing = true
			cmd := m.feedback.Focus()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m reviewModel) decide(v review.Verdict) (tea.Model, tea.Cmd) {
	m.verdict = &v
	return m, tea.Quit
}

func (m reviewModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("LinkedIn draft %d of %d", m.req.Attempt, m.req.MaxAttempts)))
	b.WriteString("\n")
	b.WriteString(draftStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	for _, w := range m.req.Warnings {
		b.WriteString(warnStyle.Render("⚠ " + w))
		b.WriteString("\n")
	}
	if m.typing {
		b.WriteString(m.feedback.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter send • esc back"))
	} else {
		b.WriteString(helpStyle.Render("a approve • r reject with feedback • c cancel • ↑/↓ scroll"))
	}
	return b.String()
}

// TUIGate asks for the verdict in a full-screen terminal UI
type TUIGate struct {
	in  io.Reader
	out io.Writer
}

// NewTUIGate creates a TUI gate reading keys from in and drawing to out
func NewTUIGate(in io.Reader, out io.Writer) *TUIGate {
	return &TUIGate{in: in, out: out}
}

func (g *TUIGate) RequestVerdict(ctx context.Context, req output.ReviewRequest) (review.Verdict, error) {
	p := tea.NewProgram(
		newReviewModel(req),
		tea.WithContext(ctx),
		tea.WithInput(g.in),
		tea.WithOutput(g.out),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return review.Verdict{}, ctx.Err()
		}
		return review.Verdict{}, fmt.Errorf("review UI failed: %w", err)
	}

	m, ok := final.(reviewModel)
	if !ok || m.verdict == nil {
		return review.Verdict{}, ErrNoResponse
	}
	return *m.verdict, nil
}

func (g *TUIGate) Close() error { return nil }
