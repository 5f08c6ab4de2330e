package service

import (
	"context"
	"fmt"

	"github.com/agnosto/chirp/db"
	"github.com/agnosto/chirp/db/models"
	"github.com/agnosto/chirp/db/repository"
	"github.com/agnosto/chirp/posts"
)

// CacheService keeps a bounded snapshot of the most recent posts. It is a
// fallback view, never the source of truth for pagination.
type CacheService struct {
	repo  repository.PostRepository
	limit int
}

// NewCacheService creates a cache service returning at most limit posts
func NewCacheService(repo repository.PostRepository, limit int) *CacheService {
	return &CacheService{repo: repo, limit: limit}
}

// SaveTimeline upserts the authors and then the posts of list in one transaction.
func (s *CacheService) SaveTimeline(ctx context.Context, list []posts.Post) error {
	if len(list) == 0 {
		return nil
	}

	users, rows := toRows(list)
	err := s.repo.Transaction(ctx, func(repo repository.PostRepository) error {
		if err := repo.UpsertUsers(ctx, users); err != nil {
			return fmt.Errorf("upsert users: %w", err)
		}
		if err := repo.UpsertPosts(ctx, rows); err != nil {
			return fmt.Errorf("upsert posts: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save timeline: %w", err)
	}
	return nil
}

// RecentPosts returns the newest cached posts with their authors embedded.
func (s *CacheService) RecentPosts(ctx context.Context) ([]posts.Post, error) {
	rows, err := s.repo.Recent(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	list := make([]posts.Post, len(rows))
	for i, row := range rows {
		list[i] = fromRow(row)
	}
	return list, nil
}

// Count returns how many posts the cache holds in total.
func (s *CacheService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// toRows splits list into user and post rows. The first occurrence of an id
// wins, so a single statement never touches the same row twice.
func toRows(list []posts.Post) ([]models.User, []models.Post) {
	seenUsers := make(map[int64]bool)
	seenPosts := make(map[int64]bool)
	var users []models.User
	var rows []models.Post

	for _, p := range list {
		if !seenUsers[p.User.ID] {
			seenUsers[p.User.ID] = true
			users = append(users, models.User{
				ID:              p.User.ID,
				Name:            p.User.Name,
				ScreenName:      p.User.ScreenName,
				ProfileImageURL: p.User.ProfileImageURL,
			})
		}
		if seenPosts[p.ID] {
			continue
		}
		seenPosts[p.ID] = true
		rows = append(rows, models.Post{
			ID:          p.ID,
			Body:        p.Body,
			CreatedAt:   p.CreatedAt,
			CreatedUnix: db.UnixTime(p.CreatedAt),
			UserID:      p.User.ID,
			MediaURL:    p.MediaURL,
			Liked:       p.Liked,
			LikeCount:   p.LikeCount,
		})
	}
	return users, rows
}

func fromRow(row models.PostWithAuthor) posts.Post {
	return posts.Post{
		ID:        row.PostID,
		Body:      row.Body,
		CreatedAt: row.CreatedAt,
		UserID:    row.UserID,
		User: posts.User{
			ID:              row.UserID,
			Name:            row.UserName,
			ScreenName:      row.UserScreenName,
			ProfileImageURL: row.UserProfileImageURL,
		},
		MediaURL:  row.MediaURL,
		Liked:     row.Liked,
		LikeCount: row.LikeCount,
	}
}
