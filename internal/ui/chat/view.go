// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model for the coachdesk console.
//
// This file assembles the screen: home overview or the chat page, with the
// floating panel strip, toasts, and status bar layered along the bottom.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/coachdesk-tui/internal/ui/styles"
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.mode == viewHome {
		body = m.viewHome()
	} else {
		body = m.viewChatPage()
	}

	sections := []string{body}
	if strip := m.panels.View(); strip != "" {
		sections = append(sections, strip)
	}
	if toasts := m.toasts.View(m.width / 2); toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections, m.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewHome renders the overview screen.
func (m *Model) viewHome() string {
	title := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true).
		Render("coachdesk")

	unread := m.store.UnreadCount()
	summary := fmt.Sprintf("%d conversations, %d unread", len(m.store.Conversations()), unread)
	hint := m.theme.ShortcutDesc.Render("Enter opens the chat page; incoming messages pop up below.")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(summary),
		"",
		hint,
	)

	height := m.height - 6
	if height < 5 {
		height = 5
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}

// viewChatPage renders the roster column next to the selected thread.
func (m *Model) viewChatPage() string {
	left := m.viewRosterColumn()
	right := m.viewThreadColumn()
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// viewRosterColumn renders search, then the picker or the roster list.
func (m *Model) viewRosterColumn() string {
	var rows []string

	searchLine := m.theme.SearchPrompt.Render("/ ") + m.search.View()
	rows = append(rows, searchLine, "")

	if m.focus == focusPicker {
		rows = append(rows, m.viewPicker())
	} else {
		rows = append(rows, m.roster.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// viewPicker renders the new-conversation recipient list.
func (m *Model) viewPicker() string {
	if len(m.pickerUsers) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMuted).Render("No clients without a conversation")
	}

	header := m.theme.PanelTitle.Render("Start a conversation")
	var rows []string
	rows = append(rows, header)
	for i, u := range m.pickerUsers {
		line := "  " + u.DisplayName()
		if i == m.pickerCursor {
			line = m.theme.RosterItemSelected.Render("> " + u.DisplayName())
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

// viewThreadColumn renders the selected thread viewport over the composer.
func (m *Model) viewThreadColumn() string {
	var header string
	if id := m.selectedID(); id != 0 {
		if conv := m.store.Conversation(id); conv != nil {
			dot := m.theme.PresenceOffline.Render("o")
			if conv.User.Online {
				dot = m.theme.PresenceOnline.Render("*")
			}
			header = dot + " " + m.theme.PanelTitle.Render(conv.User.DisplayName())
		}
	} else if m.pickerOverride == nil {
		header = m.theme.ShortcutDesc.Render("Select a conversation")
	} else {
		header = m.theme.PanelTitle.Render("New conversation")
	}

	prompt := m.theme.InputPrompt.Render("> ")
	composer := m.theme.InputContainer.
		Width(m.vp.Width).
		Render(prompt + m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.theme.Container.Render(m.vp.View()),
		composer,
	)
}
