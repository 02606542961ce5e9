package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/plantgate/pkg/plant"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// PlantListModel - Interactive search result selection
// =============================================================================

// PlantListModel is the bubbletea model for picking one plant from a
// search result.
type PlantListModel struct {
	Plants   []plant.Plant
	Cursor   int
	Selected *plant.Plant
	Height   int
	Offset   int
}

// NewPlantListModel creates a new plant list model.
func NewPlantListModel(plants []plant.Plant) PlantListModel {
	return PlantListModel{Plants: plants, Height: 15}
}

func (m PlantListModel) Init() tea.Cmd {
	return nil
}

func (m PlantListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Plants)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Plants) == 0 {
				return m, tea.Quit
			}
			p := m.Plants[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PlantListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Plant"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Plants))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, plantRow(m.Plants[i])...))
	}

	t := plantTable(rows, func(row int) bool { return m.Offset+row == m.Cursor }, true)
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Plants))))

	return b.String()
}

// =============================================================================
// Tables
// =============================================================================

var plantHeaders = []string{"ID", "Name", "Scientific name", "Cycle", "Watering", "Spacing"}

func plantRow(p plant.Plant) []string {
	return []string{
		p.ID,
		p.Name,
		p.ScientificName,
		p.Cycle,
		p.Watering,
		fmt.Sprintf("%d in", p.Spacing),
	}
}

// plantTable renders rows under plantHeaders. With a cursor column the
// first header is blank and current reports the highlighted row.
func plantTable(rows [][]string, current func(row int) bool, cursor bool) *table.Table {
	headers := plantHeaders
	if cursor {
		headers = append([]string{""}, plantHeaders...)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if current != nil && current(row) {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 0 && !cursor {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})
}
