package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bar renders segments on a single background so the ANSI resets between
// styled segments don't leave unpainted gaps.
type bar struct {
	bg    lipgloss.Color
	space string
}

func newBar(bgColor string) bar {
	bg := lipgloss.Color(bgColor)
	return bar{bg: bg, space: lipgloss.NewStyle().Background(bg).Render(" ")}
}

// text renders s with style on the bar background, word by word.
func (b bar) text(s string, style lipgloss.Style) string {
	if s == "" {
		return ""
	}
	styled := style.Background(b.bg)
	words := strings.Split(s, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

func (b bar) gap(n int) string {
	return lipgloss.NewStyle().Background(b.bg).Render(strings.Repeat(" ", n))
}

func (b bar) join(parts []string, gap int) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, b.gap(gap))
}

// titledBox draws content in a box with title in the top border:
// ┌─── Title ───┐
func titledBox(theme Theme, title, content string, width, height int, focused bool) string {
	borderColor, bgColor := theme.Border, theme.SurfaceAlt
	if focused {
		borderColor, bgColor = theme.BorderFocus, theme.FocusBg
	}
	b := newBar(bgColor)
	border := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Text))

	inner := max(width-2, 0)
	title = truncate(title, max(inner-4, 0))
	left := max((inner-lipgloss.Width(title)-2)/2, 0)
	right := max(inner-lipgloss.Width(title)-2-left, 0)

	var out strings.Builder
	out.WriteString(b.text("┌"+strings.Repeat("─", left), border))
	out.WriteString(b.text(" "+title+" ", heading))
	out.WriteString(b.text(strings.Repeat("─", right)+"┐", border))
	out.WriteString("\n")

	body := lipgloss.NewStyle().Width(inner).MaxWidth(inner).Background(lipgloss.Color(bgColor))
	lines := strings.Split(content, "\n")
	for i := 0; i < max(height-2, 0); i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		out.WriteString(b.text("│", border) + body.Render(line) + b.text("│", border))
		out.WriteString("\n")
	}
	out.WriteString(b.text("└"+strings.Repeat("─", inner)+"┘", border))
	return out.String()
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
