package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"desfondo/internal/batch"
)

var (
	ColorInk     = lipgloss.Color("#E5E9F0")
	ColorDim     = lipgloss.Color("#7A8291")
	ColorAccent  = lipgloss.Color("#88C0D0")
	ColorSuccess = lipgloss.Color("#A3BE8C")
	ColorFail    = lipgloss.Color("#BF616A")
)

type SummaryRow struct {
	Label string
	Value string
}

// RenderSummary draws the final counts block shown after a run.
func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		lines = append(lines, fmt.Sprintf("%s | %s", summaryLabelStyle.Render(label), summaryValueStyle.Render(value)))
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// RenderResult styles one completed-item line for the post-run log.
func RenderResult(res batch.ItemResult) string {
	if res.OK() {
		return okMarkStyle.Render("ok") + "      " + resultStyle.Render(res.Describe())
	}
	return failMarkStyle.Render("failed") + "  " + resultStyle.Render(res.Describe())
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	summaryLabelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	summaryValueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	resultStyle       = lipgloss.NewStyle().Foreground(ColorInk)
	okMarkStyle       = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	failMarkStyle     = lipgloss.NewStyle().Foreground(ColorFail).Bold(true)
)
