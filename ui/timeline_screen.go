package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	handleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa"))
	selectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#89dceb"))
	likedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c2e7")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
)

// HandleTimelineUpdate handles keys while the timeline is shown
func (m *MainModel) HandleTimelineUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursorPos > 0 {
			m.cursorPos--
		}
		m.ensureCursorVisible()

	case key.Matches(msg, m.keys.Down):
		if m.cursorPos < len(m.items)-1 {
			m.cursorPos++
			m.ensureCursorVisible()
			return m, nil
		}
		// Already on the last post: scrolling further asks for older ones.
		return m, m.startLoadMore()

	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.message = ""
		m.loadingMessage = "Refreshing"
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Like):
		if m.liking || len(m.items) == 0 || m.fromCache {
			return m, nil
		}
		m.liking = true
		return m, m.toggleLikeCmd(m.items[m.cursorPos].ID)

	case key.Matches(msg, m.keys.Compose):
		m.state = ComposeState
		m.errMessage = ""
		m.message = ""
		m.input.Reset()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *MainModel) startLoadMore() tea.Cmd {
	if m.loading || m.loadingMore || len(m.items) == 0 || m.fromCache {
		return nil
	}
	m.loadingMore = true
	m.message = ""
	return m.loadMoreCmd()
}

// RenderTimeline renders the post list with its status and footer lines
func (m *MainModel) RenderTimeline() string {
	var sb strings.Builder

	header := "chirp " + m.version
	if m.fromCache {
		header += dimStyle.Render(" (cached)")
	}
	sb.WriteString(headerStyle.Render(header) + "\n")
	if m.newPosts > 0 {
		sb.WriteString(noticeStyle.Render(fmt.Sprintf("%d new posts, press r", m.newPosts)) + "\n")
	}
	sb.WriteString("\n")

	if len(m.items) == 0 {
		sb.WriteString(dimStyle.Render("Nothing here yet. Press r to refresh.") + "\n")
	}

	end := m.viewportStart + m.visibleCount()
	if end > len(m.items) {
		end = len(m.items)
	}
	now := m.now()
	for i := m.viewportStart; i < end; i++ {
		p := m.items[i]
		prefix := "  "
		if i == m.cursorPos {
			prefix = selectStyle.Render("> ")
		}

		author := nameStyle.Render(p.User.Name) + " " + handleStyle.Render("@"+p.User.ScreenName)
		if age := RelativeTime(p.CreatedAt, now); age != "" {
			author += dimStyle.Render(" · " + age)
		}
		sb.WriteString(prefix + author + "\n")
		sb.WriteString("  " + strings.ReplaceAll(p.Body, "\n", " ") + "\n")

		likes := "♡ " + FormatCount(p.LikeCount)
		if p.Liked {
			likes = likedStyle.Render("♥ " + FormatCount(p.LikeCount))
		}
		if p.HasMedia() {
			likes += dimStyle.Render("  [photo]")
		}
		sb.WriteString("  " + likes + "\n\n")
	}

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View() + " " + m.loadingMessage + "\n")
	case m.loadingMore:
		sb.WriteString(m.spinner.View() + " Loading older posts\n")
	case m.errMessage != "":
		sb.WriteString(errorStyle.Render(m.errMessage) + "\n")
	case m.message != "":
		sb.WriteString(messageStyle.Render(m.message) + "\n")
	}

	if m.cache != nil {
		sb.WriteString(dimStyle.Render(cacheFooter(m.cachedCount, m.syncedAt)) + "\n")
	}
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}
