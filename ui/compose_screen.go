package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnosto/chirp/compose"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// HandleComposeUpdate handles keys on the compose screen
func (m *MainModel) HandleComposeUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.publishing {
			return m, nil
		}
		m.input.Blur()
		m.state = TimelineState
		m.errMessage = ""
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.publishing {
			return m, nil
		}
		body := m.input.Value()
		if err := compose.Validate(body, m.composer.MaxLen()); err != nil {
			m.errMessage = composeError(err)
			return m, nil
		}
		m.publishing = true
		m.errMessage = ""
		return m, m.publishCmd(body)
	}

	if m.publishing {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MainModel) handlePublishDone(msg publishDoneMsg) (tea.Model, tea.Cmd) {
	m.publishing = false
	if msg.Err != nil {
		if !isCancelled(msg.Err) {
			m.errMessage = composeError(msg.Err)
		}
		return m, nil
	}

	m.input.Blur()
	m.input.Reset()
	m.state = TimelineState
	m.errMessage = ""
	m.message = fmt.Sprintf("Posted: %s", msg.Post.Body)
	if m.loading {
		return m, nil
	}
	m.loading = true
	m.loadingMessage = "Refreshing"
	return m, m.refreshCmd()
}

func composeError(err error) string {
	switch {
	case errors.Is(err, compose.ErrEmptyBody):
		return "Write something first."
	case errors.Is(err, compose.ErrTooLong):
		return "Your post is too long."
	default:
		return failureMessage("Posting", err)
	}
}

// RenderCompose renders the compose screen with a live character counter
func (m *MainModel) RenderCompose() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("New post") + "\n\n")
	sb.WriteString(m.input.View() + "\n\n")

	remaining := compose.Remaining(m.input.Value(), m.composer.MaxLen())
	counter := fmt.Sprintf("%d characters left", remaining)
	if remaining < 0 {
		sb.WriteString(errorStyle.Render(counter) + "\n")
	} else {
		sb.WriteString(dimStyle.Render(counter) + "\n")
	}

	switch {
	case m.publishing:
		sb.WriteString(m.spinner.View() + " Posting\n")
	case m.errMessage != "":
		sb.WriteString(errorStyle.Render(m.errMessage) + "\n")
	}

	sb.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.Submit, m.keys.Back, m.keys.Quit}))
	return sb.String()
}
