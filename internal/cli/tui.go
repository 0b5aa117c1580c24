package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/qweave/metalize/pkg/design/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// DesignListModel - Interactive design selection
// =============================================================================

// DesignListModel is the bubbletea model for picking a stored design.
type DesignListModel struct {
	Names    []string
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewDesignListModel creates a new design list model.
func NewDesignListModel(names []string) DesignListModel {
	return DesignListModel{
		Names:  names,
		Height: 15,
	}
}

func (m DesignListModel) Init() tea.Cmd {
	return nil
}

func (m DesignListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Names)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Names[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m DesignListModel) View() string {
	if len(m.Names) == 0 {
		return listDimStyle.Render("No stored designs") + "\n"
	}

	s := StyleTitle.Render("Select a design") + "\n\n"

	end := m.Offset + m.Height
	if end > len(m.Names) {
		end = len(m.Names)
	}
	for i := m.Offset; i < end; i++ {
		line := "  " + listNormalStyle.Render(m.Names[i])
		if i == m.Cursor {
			line = listSelectedStyle.Render("> " + m.Names[i])
		}
		s += line + "\n"
	}

	s += "\n" + listDimStyle.Render("↑/↓ move · enter select · q quit") + "\n"
	return s
}

// pickDesign lists the stored designs and lets the user pick one.
// Returns an empty name if the picker was dismissed.
func pickDesign(ctx context.Context, designs store.Store) (string, error) {
	names, err := designs.List(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		printInfo("No stored designs")
		return "", nil
	}

	p := tea.NewProgram(NewDesignListModel(names), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("design picker: %w", err)
	}
	model, ok := final.(DesignListModel)
	if !ok {
		return "", nil
	}
	return model.Selected, nil
}
