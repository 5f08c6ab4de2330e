// Package timeline owns the in-memory home timeline: the ordered posts, the
// pagination cursor and the like state, published through an observable List.
package timeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/agnosto/chirp/logger"
	"github.com/agnosto/chirp/posts"
	"golang.org/x/sync/semaphore"
)

var (
	ErrNoCursor = errors.New("no cursor: timeline is empty")
	ErrNotFound = errors.New("post not found in timeline")

	// ErrReplyMismatch means the server answered a like with a different post.
	ErrReplyMismatch = errors.New("reply is for a different post")
)

// Source is the part of the REST client the controller needs.
type Source interface {
	HomeTimeline(ctx context.Context) ([]posts.Post, error)
	OlderThan(ctx context.Context, maxID int64) ([]posts.Post, error)
	Like(ctx context.Context, id int64) (posts.Post, error)
	Unlike(ctx context.Context, id int64) (posts.Post, error)
}

// Store receives every page the controller accepts.
type Store interface {
	SaveTimeline(ctx context.Context, list []posts.Post) error
}

// Controller drives refresh and pagination. Refresh and LoadMore are
// serialised; a second call waits for the first to finish.
type Controller struct {
	source Source
	store  Store
	list   *List
	pager  *semaphore.Weighted
}

// NewController wires source and an optional store (nil disables caching).
func NewController(source Source, store Store) *Controller {
	return &Controller{
		source: source,
		store:  store,
		list:   NewList(),
		pager:  semaphore.NewWeighted(1),
	}
}

// List exposes the observable collection for presentation code.
func (c *Controller) List() *List {
	return c.list
}

// Items returns a copy of the loaded posts, newest first.
func (c *Controller) Items() []posts.Post {
	return c.list.Snapshot()
}

// Cursor returns the id of the last loaded post. ok is false when nothing is loaded.
func (c *Controller) Cursor() (id int64, ok bool) {
	last, ok := c.list.Last()
	if !ok {
		return 0, false
	}
	return last.ID, true
}

// Refresh replaces the timeline with the newest page. On failure nothing changes.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.pager.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.pager.Release(1)

	page, err := c.source.HomeTimeline(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	// The caller went away while the request was in flight.
	if err := ctx.Err(); err != nil {
		return err
	}

	c.list.ReplaceAll(page)
	logger.Logger.Printf("[INFO] Refreshed timeline with %d posts", len(page))
	c.save(ctx, page)
	return nil
}

// LoadMore appends the page older than the cursor and returns how many posts
// were added. Posts already in the timeline are skipped.
func (c *Controller) LoadMore(ctx context.Context) (int, error) {
	if err := c.pager.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer c.pager.Release(1)

	cursor, ok := c.Cursor()
	if !ok {
		return 0, ErrNoCursor
	}

	page, err := c.source.OlderThan(ctx, cursor)
	if err != nil {
		return 0, fmt.Errorf("load more older than %d: %w", cursor, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fresh := c.dedupe(page)
	if len(fresh) > 0 {
		c.list.AddAll(fresh)
	}
	logger.Logger.Printf("[INFO] Loaded %d older posts (%d new) before %d", len(page), len(fresh), cursor)
	c.save(ctx, page)
	return len(fresh), nil
}

// ToggleLike likes or unlikes id depending on its current state and stores the
// server's copy in place. Nothing changes until the server confirms.
func (c *Controller) ToggleLike(ctx context.Context, id int64) (posts.Post, error) {
	current, _, ok := c.list.Find(id)
	if !ok {
		return posts.Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}

	var updated posts.Post
	var err error
	if current.Liked {
		updated, err = c.source.Unlike(ctx, id)
	} else {
		updated, err = c.source.Like(ctx, id)
	}
	if err != nil {
		return posts.Post{}, fmt.Errorf("toggle like on %d: %w", id, err)
	}
	if err := ctx.Err(); err != nil {
		return posts.Post{}, err
	}
	if updated.ID != id {
		return posts.Post{}, fmt.Errorf("toggle like on %d: got post %d: %w", id, updated.ID, ErrReplyMismatch)
	}

	// A refresh may have moved or dropped the post while the request was out.
	if _, ok := c.list.ReplaceByID(updated); !ok {
		logger.Logger.Printf("[WARN] Post %d left the timeline before its like state came back", id)
	}
	c.save(ctx, []posts.Post{updated})
	return updated, nil
}

func (c *Controller) dedupe(page []posts.Post) []posts.Post {
	existing := make(map[int64]struct{}, c.list.Len())
	for _, p := range c.list.Snapshot() {
		existing[p.ID] = struct{}{}
	}

	fresh := make([]posts.Post, 0, len(page))
	for _, p := range page {
		if _, ok := existing[p.ID]; ok {
			continue
		}
		existing[p.ID] = struct{}{}
		fresh = append(fresh, p)
	}
	return fresh
}

func (c *Controller) save(ctx context.Context, page []posts.Post) {
	if c.store == nil || len(page) == 0 {
		return
	}
	if err := c.store.SaveTimeline(ctx, page); err != nil {
		logger.Logger.Printf("[WARN] Failed to cache %d posts: %v", len(page), err)
	}
}
