package ui

import (
	"github.com/charmbracelet/lipgloss"
	"strings"
)

// RenderLoadingScreen renders the spinner while nothing is on screen yet
func (m *MainModel) RenderLoadingScreen() string {
	var sb strings.Builder

	loadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5c2e7")).
		Bold(true).
		Padding(2, 0, 1, 0)

	loadingText := m.spinner.View() + " " + m.loadingMessage

	centeredLoading := lipgloss.Place(
		m.width,
		m.height/2,
		lipgloss.Center,
		lipgloss.Center,
		loadingStyle.Render(loadingText),
	)

	sb.WriteString(centeredLoading)
	if m.errMessage != "" {
		sb.WriteString("\n" + errorStyle.Render(m.errMessage))
	}

	return sb.String()
}
