package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// confirmDelete asks before deleting one record.
type confirmDelete struct {
	ctx    context.Context
	screen screen
	id     int64
	label  string
}

func (c confirmDelete) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Yes):
		return c, deleteCmd(c.ctx, c.screen, c.id), true
	case key.Matches(km, keys.No):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmDelete) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Render(fmt.Sprintf("Delete %s %q?", singular(c.screen.Title()), c.label)) +
		"\n\n" +
		styles.FaintText.Render("y: Delete  •  n/Esc: Keep")
	return placeModal(theme, "Confirm", body, confirmWidth, width, height)
}
