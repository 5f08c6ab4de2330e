package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/agnosto/chirp/db"
	"github.com/agnosto/chirp/db/repository"
	"github.com/agnosto/chirp/posts"
)

func openCache(t *testing.T, limit int) *CacheService {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "timeline.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewCacheService(repository.NewPostRepository(database.DB), limit)
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// post builds a post created i minutes after base, written by one of three users.
func post(id int64, minutes int) posts.Post {
	uid := id%3 + 1
	return posts.Post{
		ID:        id,
		Body:      "body",
		CreatedAt: base.Add(time.Duration(minutes) * time.Minute).Format(posts.TimestampLayout),
		UserID:    uid,
		User: posts.User{
			ID:              uid,
			Name:            "User",
			ScreenName:      "user",
			ProfileImageURL: "https://img",
		},
	}
}

func TestRecentPostsCapsAtLimit(t *testing.T) {
	cache := openCache(t, 15)
	ctx := context.Background()

	var list []posts.Post
	// Ids and times deliberately disagree so ordering must follow creation time.
	for i := 0; i < 20; i++ {
		list = append(list, post(int64(100-i*3%20), i))
	}
	if err := cache.SaveTimeline(ctx, list); err != nil {
		t.Fatalf("save: %v", err)
	}

	count, err := cache.Count(ctx)
	if err != nil || count != 20 {
		t.Fatalf("expected 20 rows, got %d (%v)", count, err)
	}

	recent, err := cache.RecentPosts(ctx)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 15 {
		t.Fatalf("expected 15 posts, got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i-1].CreatedTime().Before(recent[i].CreatedTime()) {
			t.Fatalf("not newest first at %d", i)
		}
	}
	oldestKept := recent[len(recent)-1].CreatedTime()
	if want := base.Add(5 * time.Minute); !oldestKept.Equal(want) {
		t.Fatalf("expected oldest kept %v, got %v", want, oldestKept)
	}
	for _, p := range recent {
		if p.User.ID == 0 || p.User.ScreenName == "" || p.UserID != p.User.ID {
			t.Fatalf("post %d has no embedded author: %+v", p.ID, p.User)
		}
	}
}

func TestSaveTimelineReplacesExistingRows(t *testing.T) {
	cache := openCache(t, 15)
	ctx := context.Background()

	p := post(5, 0)
	p.Liked = true
	p.MediaURL = "https://img/5.jpg"
	if err := cache.SaveTimeline(ctx, []posts.Post{p}); err != nil {
		t.Fatalf("save: %v", err)
	}

	p.Liked = false
	p.LikeCount = 3
	p.MediaURL = ""
	p.User.Name = "Renamed"
	if err := cache.SaveTimeline(ctx, []posts.Post{p}); err != nil {
		t.Fatalf("save again: %v", err)
	}

	recent, err := cache.RecentPosts(ctx)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected one row, got %d", len(recent))
	}
	got := recent[0]
	if got.Liked || got.LikeCount != 3 || got.MediaURL != "" || got.User.Name != "Renamed" {
		t.Fatalf("row not replaced: %+v", got)
	}
}

func TestSaveTimelineWithRepeatedIDs(t *testing.T) {
	cache := openCache(t, 15)
	ctx := context.Background()

	list := []posts.Post{post(1, 2), post(4, 1), post(1, 2)}
	if err := cache.SaveTimeline(ctx, list); err != nil {
		t.Fatalf("save: %v", err)
	}
	count, err := cache.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 rows, got %d (%v)", count, err)
	}
}

func TestSaveTimelineEmpty(t *testing.T) {
	cache := openCache(t, 15)
	if err := cache.SaveTimeline(context.Background(), nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	recent, err := cache.RecentPosts(context.Background())
	if err != nil || len(recent) != 0 {
		t.Fatalf("expected empty cache, got %d (%v)", len(recent), err)
	}
}
