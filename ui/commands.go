package ui

import (
	"context"
	"errors"

	"github.com/agnosto/chirp/logger"
	"github.com/agnosto/chirp/posts"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *MainModel) loadCacheCmd() tea.Cmd {
	if m.cache == nil {
		return nil
	}
	cache, ctx := m.cache, m.ctx
	return func() tea.Msg {
		cached, err := cache.RecentPosts(ctx)
		if err != nil {
			logger.Logger.Printf("[WARN] Failed to read cached timeline: %v", err)
			return cacheLoadedMsg{Err: err}
		}
		count, _ := cache.Count(ctx)
		return cacheLoadedMsg{Posts: cached, Count: count}
	}
}

func (m *MainModel) refreshCmd() tea.Cmd {
	controller, ctx := m.controller, m.ctx
	count := m.countFunc()
	return func() tea.Msg {
		err := controller.Refresh(ctx)
		if err != nil {
			logger.Logger.Printf("[ERROR] Refresh failed: %v", err)
		}
		return refreshDoneMsg{Err: err, Count: count()}
	}
}

func (m *MainModel) loadMoreCmd() tea.Cmd {
	controller, ctx := m.controller, m.ctx
	count := m.countFunc()
	return func() tea.Msg {
		added, err := controller.LoadMore(ctx)
		if err != nil {
			logger.Logger.Printf("[ERROR] Loading older posts failed: %v", err)
		}
		return loadMoreDoneMsg{Added: added, Err: err, Count: count()}
	}
}

func (m *MainModel) toggleLikeCmd(id int64) tea.Cmd {
	controller, ctx := m.controller, m.ctx
	return func() tea.Msg {
		p, err := controller.ToggleLike(ctx, id)
		if err != nil {
			logger.Logger.Printf("[ERROR] Toggling like on %d failed: %v", id, err)
		}
		return likeDoneMsg{Post: p, Err: err}
	}
}

func (m *MainModel) publishCmd(body string) tea.Cmd {
	composer, ctx := m.composer, m.ctx
	return func() tea.Msg {
		p, err := composer.Publish(ctx, body)
		return publishDoneMsg{Post: p, Err: err}
	}
}

// countFunc returns a reader for the cached row count, or -1 without a cache.
func (m *MainModel) countFunc() func() int64 {
	cache, ctx := m.cache, m.ctx
	return func() int64 {
		if cache == nil {
			return -1
		}
		n, err := cache.Count(ctx)
		if err != nil {
			return -1
		}
		return n
	}
}

func (m *MainModel) waitForListEvent() tea.Cmd {
	events, ctx := m.listEvents, m.ctx
	return func() tea.Msg {
		select {
		case ev := <-events:
			return listChangedMsg{Event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *MainModel) startStreamCmd() tea.Cmd {
	if m.listener == nil || !m.listener.Enabled() {
		return nil
	}
	listener, ctx := m.listener, m.ctx
	out, errc := m.streamPosts, m.streamErr
	wait := m.waitForStream()
	return func() tea.Msg {
		go func() {
			errc <- listener.Run(ctx, func(p posts.Post) {
				select {
				case out <- p:
				case <-ctx.Done():
				}
			})
		}()
		return wait()
	}
}

func (m *MainModel) waitForStream() tea.Cmd {
	out, errc, ctx := m.streamPosts, m.streamErr, m.ctx
	return func() tea.Msg {
		select {
		case p := <-out:
			return newPostMsg{Post: p}
		case err := <-errc:
			return streamStoppedMsg{Err: err}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *MainModel) notifyCmd(p posts.Post) tea.Cmd {
	if m.notifier == nil {
		return nil
	}
	notifier := m.notifier
	return func() tea.Msg {
		notifier.NotifyNewPost(p)
		return nil
	}
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
