package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type stepMsg struct{}

type doneMsg struct{}

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// model renders a single progress line: spinner, label, bar and counter.
type model struct {
	label   string
	total   int
	done    int
	bar     progress.Model
	spinner spinner.Model
	quit    bool
}

func newModel(label string, total int) model {
	sp := spinner.New()
	// Line spinner avoids Braille characters that render poorly on some terminals
	sp.Spinner = spinner.Line
	return model{
		label:   label,
		total:   total,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner: sp,
	}
}

func (m model) Init() tea.Cmd { return m.spinner.Tick }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		if m.done < m.total {
			m.done++
		}
		return m, nil
	case doneMsg:
		m.quit = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quit = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		w := msg.Width - len(m.label) - 24
		if w > 60 {
			w = 60
		}
		if w > 10 {
			m.bar.Width = w
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) percent() float64 {
	if m.total <= 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m model) View() string {
	var b strings.Builder
	if m.quit {
		b.WriteString("  ")
	} else {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(labelStyle.Render(m.label) + " ")
	b.WriteString(m.bar.ViewAs(m.percent()) + " ")
	b.WriteString(countStyle.Render(fmt.Sprintf("[%d/%d]", m.done, m.total)))
	b.WriteString("\n")
	return b.String()
}
