package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/logtail"
)

// renderMain stacks the header, resource tabs, content and command bar.
func (m Model) renderMain() string {
	var content string
	switch m.currentView {
	case ViewDetail:
		content = m.renderDetail()
	case ViewActivity:
		content = m.renderActivity()
	default:
		content = m.renderList()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		content,
		m.renderCommandBar(),
	)
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	b := newBar(m.theme.Surface)

	status := b.text("online", styles.SuccessText)
	if !m.online {
		status = b.text("offline", styles.WarningText.Bold(true))
	}
	locale := strings.ToUpper(m.locale)
	if m.rtl() {
		locale += " RTL"
	}

	parts := []string{
		styles.Logo.Render("busadmin"),
		status,
		b.text(m.store.Auth.Snapshot().User.DisplayName(), styles.Text),
		b.text(locale, styles.InfoText),
	}
	if m.screen().View(m.locale).Loading {
		parts = append(parts, m.spinner.View())
	}
	parts = append(parts, b.text(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(b.join(parts, 2))
}

// renderTabs renders one tab per resource, in reading order.
func (m Model) renderTabs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	b := newBar(m.theme.Background)

	tabs := make([]string, 0, len(m.screens))
	for i, s := range m.screens {
		if i == m.current {
			tabs = append(tabs, styles.Selected.Render(" "+s.Title()+" "))
			continue
		}
		tabs = append(tabs, b.text(s.Title(), styles.MutedText))
	}
	if m.rtl() {
		reverse(tabs)
	}
	line := b.join(tabs, 2)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Background)).
		Width(m.width).
		MaxWidth(m.width).
		Render(line)
}

// renderList renders the record table, with the selected record beside it
// on wide terminals.
func (m Model) renderList() string {
	s := m.screen()
	v := s.View(m.locale)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	height := m.contentHeight()

	var status string
	switch {
	case v.Err != nil:
		status = styles.DangerText.Render(api.Message(v.Err))
	case v.Loading:
		status = styles.WarningText.Render("Loading...")
	case v.Patched:
		status = styles.InfoText.Render("Local changes, r to refresh")
	case len(v.Rows) == 0 && v.Page.CurrentPage > 0:
		status = styles.MutedText.Render("No records")
	}
	if m.searching {
		status = m.search.View()
	} else if q := v.Query.Search; q != "" {
		status = strings.TrimSpace(status + "  " + styles.AccentText.Render("/"+q))
	}

	body := status + "\n" + m.table.View() + "\n" + renderPager(pagerFor(v.Page, m.rtl()), v.Page.Total, m.theme)
	list := titledBox(m.theme, s.Title(), body, m.listWidth(), height, true)

	if m.width < LayoutCompactWidth {
		return list
	}
	side := m.width - m.listWidth()
	content := styles.FaintText.Render("No selection")
	if id, ok := m.selectedID(); ok {
		content = m.detailText(id, side-4)
	}
	pane := titledBox(m.theme, "Details", content, side, height, false)
	if m.rtl() {
		return lipgloss.JoinHorizontal(lipgloss.Top, pane, list)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, pane)
}

// renderDetail renders the full-screen record view.
func (m Model) renderDetail() string {
	title := fmt.Sprintf("%s #%d", singular(m.screen().Title()), m.detailID)
	return titledBox(m.theme, title, m.detail.View(), m.width, m.contentHeight(), true)
}

// detailText lays out the record's lines as a label column and a value
// column. Missing records show the list state instead.
func (m Model) detailText(id int64, width int) string {
	styles := m.theme.Styles()
	v := m.screen().View(m.locale)

	lines, ok := m.screen().Detail(id, m.locale)
	if !ok {
		switch {
		case v.Err != nil:
			return styles.DangerText.Render(api.Message(v.Err))
		case v.Loading:
			return styles.WarningText.Render("Loading...")
		}
		return styles.FaintText.Render("Not loaded")
	}

	labelWidth := 18
	valueWidth := max(width-labelWidth, 8)
	label := styles.MutedText.Width(labelWidth)
	value := styles.Text.Width(valueWidth)
	if m.rtl() {
		value = value.Align(lipgloss.Right)
	}

	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		val := line.Value
		switch {
		case val == "":
			val = "-"
		case line.Label == "Status" || line.Label == "Payment":
			val = styles.StatusStyle(val).Render(val)
		case line.Label == "Type":
			val = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(val))).Render(val)
		}
		if m.rtl() {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, value.Render(val), label.Align(lipgloss.Right).Render(line.Label)))
			continue
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(line.Label), value.Render(val)))
	}
	return strings.Join(rows, "\n")
}

// refreshDetail reloads the full-screen record view.
func (m *Model) refreshDetail() {
	if m.currentView != ViewDetail {
		return
	}
	m.detail.SetContent(m.detailText(m.detailID, m.detail.Width))
}

// renderActivity renders the console's own log.
func (m Model) renderActivity() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)

	level := m.activityLevel
	if level == "" {
		level = "ALL"
	}
	status := styles.MutedText.Render("Level ") + styles.AccentText.Render(level)
	if m.config != nil && m.config.LogPath != "" {
		status += styles.FaintText.Render("  " + truncate(m.config.LogPath, max(m.width-30, 10)))
	}
	if m.activityErr != nil {
		status = styles.DangerText.Render(m.activityErr.Error())
	}

	return titledBox(m.theme, "Activity", status+"\n"+m.activity.View(), m.width, m.contentHeight(), true)
}

// refreshActivity recolors the log for the current theme and level.
func (m *Model) refreshActivity() {
	lines := logtail.ColorizeLines(m.activityLines, m.theme.Palette(), m.activityLevel)
	if len(lines) == 0 {
		m.activity.SetContent(m.theme.Styles().FaintText.Render("No activity yet"))
		return
	}
	m.activity.SetContent(strings.Join(lines, "\n"))
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	h := m.help
	h.Width = helpWidth - 6
	return placeModal(m.theme, "Keyboard Shortcuts", h.FullHelpView(m.keys.FullHelp()), helpWidth, m.width, m.height)
}

// renderCommandBar renders the key hints with the flash message on the
// right.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	b := newBar(m.theme.Surface)

	hints := m.help.ShortHelpView(m.keys.ShortHelp())

	var flash string
	if m.flash != "" {
		style := styles.SuccessText
		if m.flashErr {
			style = styles.DangerText
		}
		flash = b.text(m.flash, style)
	}

	pad := max(m.width-lipgloss.Width(hints)-lipgloss.Width(flash)-1, 1)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		MaxWidth(m.width).
		Render(hints + b.gap(pad) + flash)
}
