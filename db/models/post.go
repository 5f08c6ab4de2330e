package models

// User is an author row. Rows are replaced wholesale on every fetch.
type User struct {
	ID              int64  `gorm:"primaryKey;autoIncrement:false"`
	Name            string `gorm:"not null"`
	ScreenName      string `gorm:"not null"`
	ProfileImageURL string `gorm:"not null"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// Post is a timeline row. CreatedAt keeps the API string; CreatedUnix is what
// the cache orders by.
type Post struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Body        string `gorm:"not null"`
	CreatedAt   string `gorm:"column:created_at;not null;autoCreateTime:false"`
	CreatedUnix int64  `gorm:"index;not null"`
	UserID      int64  `gorm:"index;not null"`
	MediaURL    string `gorm:"not null"`
	Liked       bool   `gorm:"not null"`
	LikeCount   int64  `gorm:"not null"`
}

// TableName overrides the table name
func (Post) TableName() string {
	return "posts"
}

// PostWithAuthor is a row of the post_with_author view.
type PostWithAuthor struct {
	PostID              int64
	Body                string
	CreatedAt           string `gorm:"column:created_at"`
	CreatedUnix         int64
	MediaURL            string
	Liked               bool
	LikeCount           int64
	UserID              int64
	UserName            string
	UserScreenName      string
	UserProfileImageURL string
}

// TableName overrides the table name
func (PostWithAuthor) TableName() string {
	return "post_with_author"
}

// Schema creates both tables. posts.user_id must point at an existing user.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	screen_name TEXT NOT NULL,
	profile_image_url TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY,
	body TEXT NOT NULL,
	created_at TEXT NOT NULL,
	created_unix INTEGER NOT NULL DEFAULT 0,
	user_id INTEGER NOT NULL REFERENCES users(id) ON UPDATE CASCADE ON DELETE CASCADE,
	media_url TEXT NOT NULL DEFAULT '',
	liked INTEGER NOT NULL DEFAULT 0,
	like_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_posts_created_unix ON posts(created_unix);
CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
`

// PostWithAuthorView joins posts to their authors.
const PostWithAuthorView = `CREATE VIEW post_with_author AS
SELECT p.id AS post_id, p.body, p.created_at, p.created_unix, p.media_url, p.liked, p.like_count,
       u.id AS user_id, u.name AS user_name, u.screen_name AS user_screen_name,
       u.profile_image_url AS user_profile_image_url
FROM posts p
INNER JOIN users u ON p.user_id = u.id`
