package repository

import (
	"context"

	"github.com/agnosto/chirp/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for cached timeline rows
type PostRepository interface {
	UpsertUsers(ctx context.Context, users []models.User) error
	UpsertPosts(ctx context.Context, posts []models.Post) error
	Recent(ctx context.Context, limit int) ([]models.PostWithAuthor, error)
	Count(ctx context.Context) (int64, error)
	Transaction(ctx context.Context, fn func(PostRepository) error) error
}

// GormPostRepository implements PostRepository using GORM
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &GormPostRepository{db: db}
}

// UpsertUsers inserts users, replacing every column of rows that already exist.
func (r *GormPostRepository) UpsertUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&users).Error
}

// UpsertPosts inserts posts, replacing every column of rows that already exist.
// Authors must be upserted first.
func (r *GormPostRepository) UpsertPosts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&posts).Error
}

// Recent returns the newest rows of the join view, newest first.
func (r *GormPostRepository) Recent(ctx context.Context, limit int) ([]models.PostWithAuthor, error) {
	var rows []models.PostWithAuthor
	err := r.db.WithContext(ctx).
		Order("created_unix DESC").
		Order("post_id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Count returns the number of cached posts
func (r *GormPostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

// Transaction runs fn against a repository bound to a single transaction.
func (r *GormPostRepository) Transaction(ctx context.Context, fn func(PostRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormPostRepository{db: tx})
	})
}
