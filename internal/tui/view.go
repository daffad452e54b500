package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"prdoc/internal/analysis"
	"prdoc/internal/model"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	sections := []string{m.renderHeader(), m.renderFormArea()}
	if m.session.ProgressVisible() {
		sections = append(sections, m.renderProgress())
	}
	if m.session.ResultsVisible() {
		sections = append(sections, m.tabs.View(), panelStyle.Render(m.viewport.View()))
	}
	sections = append(sections, m.renderHelp())
	base := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.state == stateAlert {
		return m.overlayModal(m.renderAlert())
	}
	return base
}

func (m Model) overlayModal(modal string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// — header ——————————————————————————————————————————————————————————————————

func (m Model) renderHeader() string {
	title := titleStyle.Render("prdoc") + dimStyle.Render("  PR documentation & review")

	var badges []string
	for _, b := range m.badges {
		badges = append(badges, boldStyle.Render(b.Name+" ")+badgeStyle(b.State).Render(b.Label))
	}
	line := "  " + strings.Join(badges, dimStyle.Render("   │   "))

	conn := ""
	switch {
	case m.conn != nil:
		conn = okStyle.Render("● live")
	case m.dialing:
		conn = dimStyle.Render("● connecting…")
	case m.connErr != nil:
		conn = errStyle.Render("● offline") + dimStyle.Render("  ctrl+r to reconnect")
	}
	if conn != "" {
		line += dimStyle.Render("   │   ") + conn
	}
	return "\n" + title + "\n" + line + "\n"
}

func badgeStyle(s model.BadgeState) lipgloss.Style {
	switch s {
	case model.BadgeConnected:
		return okStyle
	case model.BadgeNotConfigured:
		return warnStyle
	case model.BadgeError:
		return errStyle
	}
	return dimStyle
}

// — form ————————————————————————————————————————————————————————————————————

func (m Model) renderFormArea() string {
	if m.focus == focusResults {
		return m.form.Summary() + "\n"
	}
	return m.form.View()
}

// — progress ————————————————————————————————————————————————————————————————

func (m Model) renderProgress() string {
	if msg := m.session.Error(); msg != "" {
		body := errStyle.Bold(true).Render("Analysis failed") + "\n" +
			analysis.SanitizeTerminal(msg)
		return "\n" + errorPanelStyle.Width(max(m.width-4, 20)).Render(body)
	}

	p := m.session.Progress()
	bar := m.bar.ViewAs(float64(p.Percent) / 100)
	msg := dimStyle.Render(analysis.SanitizeTerminal(p.Message))
	if p.Failed {
		bar = m.errBar.ViewAs(float64(p.Percent) / 100)
		msg = errStyle.Render(analysis.SanitizeTerminal(p.Message))
	}
	return "\n" + panelStyle.Render(bar+" "+boldStyle.Render(p.Label())+"\n"+msg)
}

// — alert ———————————————————————————————————————————————————————————————————

func (m Model) renderAlert() string {
	body := errStyle.Bold(true).Render("Cannot start analysis") + "\n\n" +
		m.alertMsg + "\n\n" +
		dimStyle.Render("enter: ok")
	return modalStyle.Render(body)
}

// — help ————————————————————————————————————————————————————————————————————

func (m Model) renderHelp() string {
	var keys string
	switch {
	case m.state == stateAlert:
		keys = "enter/esc: dismiss"
	case m.focus == focusResults:
		keys = "1-4/←→: tabs  ↑↓: scroll  x: export  esc: edit form  q: quit"
		if m.workspace != nil && m.workspace.PR != nil && m.workspace.PR.WebURL != "" {
			keys = "1-4/←→: tabs  ↑↓: scroll  x: export  o: open PR  esc: edit form  q: quit"
		}
	default:
		keys = "tab: next field  space: toggle  enter: start  ctrl+c: quit"
		if m.session.ResultsVisible() {
			keys += "  esc: results"
		}
	}
	out := "\n" + helpStyle.Render(keys)
	if m.notice != "" {
		out += "\n  " + m.notice
	}
	return out
}
