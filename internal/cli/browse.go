package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/eepp/lttngpack/pkg/distro"
	"github.com/eepp/lttngpack/pkg/report"
)

// browseCommand creates the browse command: an interactive distro list
// where selecting an entry shows that distro's releases as a table.
func (c *CLI) browseCommand() *cobra.Command {
	var refresh, noCache bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse distros interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			backend, err := c.newBackend(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer backend.Close()

			ps, err := filterProviders(providers(cfg, backend, refresh), cfg.Distros)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Collecting package data...")
			spinner.Start()
			distros, err := distro.Collect(ctx, ps)
			spinner.Stop()
			if err != nil {
				return err
			}

			model := newBrowseModel(distros)
			prog := tea.NewProgram(model, tea.WithContext(ctx))
			_, err = prog.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached responses")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching")
	return cmd
}

// browseModel is the bubbletea model for the distro browser. It has two
// screens: the distro list and the release table of the selected distro.
type browseModel struct {
	distros  []distro.Distro
	cursor   int
	height   int
	offset   int
	selected *distro.Distro
}

func newBrowseModel(distros []distro.Distro) browseModel {
	return browseModel{distros: distros, height: 15}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.selected != nil {
				m.selected = nil
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.selected == nil && m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.selected == nil && m.cursor < len(m.distros)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if m.selected == nil && len(m.distros) > 0 {
				m.selected = &m.distros[m.cursor]
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	if m.selected != nil {
		return m.detailView()
	}
	return m.listView()
}

func (m browseModel) listView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Distro"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.distros) {
		end = len(m.distros)
	}

	for i := m.offset; i < end; i++ {
		d := m.distros[i]
		line := fmt.Sprintf("%s (%d releases)", d.Name, len(d.Releases))

		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.distros))))
	return b.String()
}

func (m browseModel) detailView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.selected.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	matrix := report.Build([]distro.Distro{*m.selected})
	b.WriteString(matrix.Table())
	b.WriteString("\n")
	return b.String()
}
