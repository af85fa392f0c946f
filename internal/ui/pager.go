package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/safarline/busadmin/internal/domain"
	"github.com/safarline/busadmin/internal/paging"
)

// pagerFor builds the control for the last list response.
func pagerFor(page domain.PageInfo, rtl bool) paging.Control {
	return paging.Build(page.CurrentPage, page.LastPage, paging.Options{RTL: rtl})
}

// renderPager draws the control in visual order, followed by the total.
func renderPager(ctrl paging.Control, total int, theme Theme) string {
	styles := theme.Styles().WithBackground(theme.SurfaceAlt)
	b := newBar(theme.SurfaceAlt)

	current := styles.Text.Bold(true).
		Background(lipgloss.Color(theme.SelectionBg)).
		Foreground(lipgloss.Color(theme.SelectionText))

	parts := make([]string, 0, len(ctrl.Slots)+1)
	for _, slot := range ctrl.Slots {
		label := slot.Label()
		switch {
		case slot.Current:
			parts = append(parts, current.Render(" "+label+" "))
		case slot.Disabled:
			parts = append(parts, b.text(label, styles.FaintText))
		case slot.Kind == paging.KindPrev || slot.Kind == paging.KindNext:
			parts = append(parts, b.text(label, styles.AccentText))
		default:
			parts = append(parts, b.text(label, styles.Text))
		}
	}
	parts = append(parts, b.text(fmt.Sprintf("(%d total)", total), styles.MutedText))
	return b.join(parts, 1)
}

// pageStep returns the page the left or right edge button navigates to.
// In RTL the edges swap, so "]" still moves towards the visual right.
func pageStep(ctrl paging.Control, right bool) (int, bool) {
	slot := ctrl.Left()
	if right {
		slot = ctrl.Right()
	}
	return ctrl.Target(slot)
}
