package ui

import (
	"github.com/agnosto/chirp/api"
	"github.com/agnosto/chirp/logger"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		logger.Logger.Printf("[INFO] Window size changed to %dx%d", msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 4
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quit = true
			m.Cleanup()
			return m, tea.Quit
		}
		switch m.state {
		case TimelineState:
			return m.HandleTimelineUpdate(msg)
		case ComposeState:
			return m.HandleComposeUpdate(msg)
		}
		return m, nil

	case cacheLoadedMsg:
		if msg.Err == nil {
			m.cachedCount = msg.Count
		}
		// A finished refresh always wins over the cached snapshot.
		if msg.Err == nil && len(m.items) == 0 && m.controller.List().Len() == 0 {
			m.items = msg.Posts
			m.fromCache = len(msg.Posts) > 0
			m.clampCursor()
		}
		return m, nil

	case refreshDoneMsg:
		m.loading = false
		if msg.Count >= 0 {
			m.cachedCount = msg.Count
		}
		if msg.Err != nil {
			if !isCancelled(msg.Err) {
				m.errMessage = failureMessage("Refresh", msg.Err)
			}
			return m, nil
		}
		m.errMessage = ""
		m.newPosts = 0
		m.syncedAt = m.now()
		m.fromCache = false
		m.syncItems()
		m.cursorPos = 0
		m.viewportStart = 0
		return m, nil

	case loadMoreDoneMsg:
		m.loadingMore = false
		if msg.Count >= 0 {
			m.cachedCount = msg.Count
		}
		if msg.Err != nil {
			if !isCancelled(msg.Err) {
				m.errMessage = failureMessage("Loading older posts", msg.Err)
			}
			return m, nil
		}
		m.errMessage = ""
		m.syncedAt = m.now()
		if msg.Added == 0 {
			m.message = "No older posts."
		} else {
			m.message = ""
		}
		m.syncItems()
		return m, nil

	case likeDoneMsg:
		m.liking = false
		if msg.Err != nil {
			if !isCancelled(msg.Err) {
				m.errMessage = failureMessage("Like", msg.Err)
			}
			return m, nil
		}
		m.errMessage = ""
		m.syncItems()
		return m, nil

	case publishDoneMsg:
		return m.handlePublishDone(msg)

	case listChangedMsg:
		m.syncItems()
		return m, m.waitForListEvent()

	case newPostMsg:
		m.newPosts++
		return m, tea.Batch(m.waitForStream(), m.notifyCmd(msg.Post))

	case streamStoppedMsg:
		if msg.Err != nil && !isCancelled(msg.Err) {
			logger.Logger.Printf("[WARN] Live updates stopped: %v", msg.Err)
			m.message = "Live updates stopped."
		}
		return m, nil
	}
	return m, nil
}

func (m *MainModel) View() string {
	if m.quit {
		return ""
	}
	switch m.state {
	case TimelineState:
		if m.loading && len(m.items) == 0 {
			return m.RenderLoadingScreen()
		}
		return m.RenderTimeline()
	case ComposeState:
		return m.RenderCompose()
	default:
		return "Unknown state"
	}
}

// syncItems re-reads the controller's list once it holds anything.
func (m *MainModel) syncItems() {
	if m.controller.List().Len() == 0 && m.fromCache {
		return
	}
	m.items = m.controller.Items()
	m.fromCache = false
	m.clampCursor()
}

func (m *MainModel) clampCursor() {
	if m.cursorPos >= len(m.items) {
		m.cursorPos = len(m.items) - 1
	}
	if m.cursorPos < 0 {
		m.cursorPos = 0
	}
	m.ensureCursorVisible()
}

func (m *MainModel) visibleCount() int {
	// header, status, footer and help
	reserved := 6
	n := (m.height - reserved) / postLines
	if n < 1 {
		return 1
	}
	return n
}

func (m *MainModel) ensureCursorVisible() {
	visible := m.visibleCount()
	if m.cursorPos < m.viewportStart {
		m.viewportStart = m.cursorPos
	}
	if m.cursorPos >= m.viewportStart+visible {
		m.viewportStart = m.cursorPos - visible + 1
	}
	if m.viewportStart < 0 {
		m.viewportStart = 0
	}
}

func failureMessage(action string, err error) string {
	if api.IsRateLimited(err) {
		return action + " failed: rate limited, try again later"
	}
	return action + " failed: " + err.Error()
}
