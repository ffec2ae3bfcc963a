package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorCyan = lipgloss.Color("36")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	valueStyle  = lipgloss.NewStyle().Align(lipgloss.Right)
)

// Table renders the matrix as a styled terminal table with a rounded border.
// Version columns are right-aligned.
func (m *Matrix) Table() string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(Headers...).
		Rows(m.cells()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return labelStyle
			}
			return valueStyle
		})
	return t.Render()
}

// Plain renders the matrix without colors, for non-TTY output and --plain.
func (m *Matrix) Plain() string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Headers...).
		Rows(m.cells()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return lipgloss.NewStyle()
			}
			return lipgloss.NewStyle().Align(lipgloss.Right)
		})
	return t.Render()
}

func (m *Matrix) cells() [][]string {
	rows := make([][]string, len(m.Rows))
	for i, r := range m.Rows {
		rows[i] = []string{r.Label(), r.Tools, r.UST, r.Modules}
	}
	return rows
}
