// Package tui is the interactive terminal front end.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recsys/internal/catalog"
	"recsys/internal/domain"
)

// RecommenderPort is the TUI-facing subset of the recommender pipeline.
type RecommenderPort interface {
	RecommendScored(title string, k int) ([]domain.Recommendation, error)
	Catalog() domain.Catalog
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  RecommenderPort
	input    textinput.Model
	viewport viewport.Model
	results  []domain.Recommendation
	summary  string
	status   string
	topK     int
	cursor   int
	ready    bool
}

// New creates a new TUI model instance.
func New(service RecommenderPort, summary string, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type an exact title and press Enter (Tab: random title)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		summary:  summary,
		topK:     topK,
		status:   "Loaded. Type a title to get recommendations.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if title := strings.TrimSpace(m.input.Value()); title != "" {
				m.query(title)
				return m, nil
			}
		case "tab":
			if title, err := catalog.RandomTitle(m.service.Catalog(), nil); err == nil {
				m.input.SetValue(title)
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) query(title string) {
	res, err := m.service.RecommendScored(title, m.topK)
	switch {
	case errors.Is(err, domain.ErrTitleNotFound):
		m.status = fmt.Sprintf("No item titled %q (matching is exact)", title)
		m.results = nil
	case err != nil:
		m.status = "Error: " + err.Error()
		m.results = nil
	default:
		m.status = fmt.Sprintf("%d recommendations for %q", len(res), title)
		m.results = res
		m.cursor = 0
	}
	m.viewport.SetContent(m.renderCurrentResult())
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Content Recommender")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	head := fmt.Sprintf("Result %d/%d  score=%.3f", m.cursor+1, len(m.results), r.Score)
	title := titleStyle.Render(r.Item.Title)
	desc := r.Item.Description
	if desc == "" {
		desc = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("(no description)")
	}
	return head + "\n\n" + title + "\n" + desc
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
