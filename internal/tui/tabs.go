package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Result tab identifiers.
const (
	TabDocs   = "docs"
	TabReview = "review"
	TabIssue  = "issue"
	TabPR     = "pr"
)

type tab struct {
	id    string
	label string
}

var resultTabs = []tab{
	{TabDocs, "Documentation"},
	{TabReview, "Code Review"},
	{TabIssue, "Issue"},
	{TabPR, "Pull Request"},
}

// TabBar switches between result panels. Exactly one tab is active.
type TabBar struct {
	tabs   []tab
	active int

	activeStyle   lipgloss.Style
	inactiveStyle lipgloss.Style
	barStyle      lipgloss.Style
}

// NewTabBar returns the result tabs with Documentation active.
func NewTabBar() TabBar {
	return TabBar{
		tabs: resultTabs,

		activeStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 2),

		inactiveStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 2),

		barStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")),
	}
}

// Update handles keyboard input for tab navigation.
func (t TabBar) Update(msg tea.Msg) (TabBar, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "right", "l", "]":
			t.active = (t.active + 1) % len(t.tabs)
		case "left", "h", "[":
			t.active = (t.active - 1 + len(t.tabs)) % len(t.tabs)
		case "1", "2", "3", "4":
			t.activateIndex(int(msg.String()[0] - '1'))
		}
	}
	return t, nil
}

// Activate makes the tab with id the only active one. Unknown ids are
// ignored and reported as false.
func (t *TabBar) Activate(id string) bool {
	for i, tb := range t.tabs {
		if tb.id == id {
			t.active = i
			return true
		}
	}
	return false
}

func (t *TabBar) activateIndex(i int) {
	if i >= 0 && i < len(t.tabs) {
		t.active = i
	}
}

// ActiveID returns the id of the active tab.
func (t TabBar) ActiveID() string { return t.tabs[t.active].id }

// IsActive reports whether id is the active tab.
func (t TabBar) IsActive(id string) bool { return t.ActiveID() == id }

// View renders the tab bar.
func (t TabBar) View() string {
	rendered := make([]string, len(t.tabs))
	for i, tb := range t.tabs {
		label := string(rune('1'+i)) + " " + tb.label
		if i == t.active {
			rendered[i] = t.activeStyle.Render(label)
		} else {
			rendered[i] = t.inactiveStyle.Render(label)
		}
	}
	return t.barStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}
