package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"desfondo/internal/batch"
)

// recentLines bounds how many completed-item lines stay visible in the
// live view; the full ordered log is printed after the run.
const recentLines = 5

type Model struct {
	updates    <-chan batch.ProgressUpdate
	started    time.Time
	width      int
	total      int
	done       int
	failed     int
	lines      []string
	sequential bool
	quitting   bool
}

type doneMsg struct{}

type updateMsg batch.ProgressUpdate

func NewModel(updates <-chan batch.ProgressUpdate) Model {
	return Model{updates: updates, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		if msg.Reset {
			m.total = 0
			m.done = 0
			m.failed = 0
			m.lines = nil
			m.sequential = true
		}
		m.total += msg.TotalDelta
		m.done += msg.DoneDelta
		m.failed += msg.FailedDelta
		if msg.Line != "" {
			m.lines = append(m.lines, msg.Line)
			if len(m.lines) > recentLines {
				m.lines = m.lines[len(m.lines)-recentLines:]
			}
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.done) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	title := "desfondo"
	if m.sequential {
		title += dimStyle.Render("  (sequential)")
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)
	lines := []string{
		titleStyle.Render(title),
		labelStyle.Render(fmt.Sprintf("Images: %d/%d", m.done, m.total)) + dimStyle.Render(fmt.Sprintf("  failed:%d", m.failed)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(renderBar(barWidth, ratio)),
	}
	for _, line := range m.lines {
		lines = append(lines, dimStyle.Render(line))
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan batch.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorInk)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
)
