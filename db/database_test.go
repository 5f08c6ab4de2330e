package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/agnosto/chirp/db/models"
)

func TestOpenCreatesSchema(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "timeline.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	for _, name := range []string{"users", "posts", "post_with_author"} {
		var count int64
		if err := database.DB.Raw(`SELECT COUNT(*) FROM sqlite_master WHERE name = ?`, name).Scan(&count).Error; err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if count != 1 {
			t.Fatalf("expected %s to exist", name)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.db")
	for i := 0; i < 2; i++ {
		database, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		database.Close()
	}
}

func TestForeignKeyRequiresAuthor(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "timeline.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	orphan := models.Post{ID: 1, Body: "b", CreatedAt: "x", UserID: 99}
	if err := database.DB.Create(&orphan).Error; err == nil {
		t.Fatalf("expected foreign key violation for a post without an author")
	}
}

func TestOpenMigratesOldSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.db")

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("raw open: %v", err)
	}
	_, err = raw.Exec(`
	CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, screen_name TEXT NOT NULL, profile_image_url TEXT NOT NULL DEFAULT '');
	CREATE TABLE posts (id INTEGER PRIMARY KEY, body TEXT NOT NULL, created_at TEXT NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id), media_url TEXT NOT NULL DEFAULT '',
		liked INTEGER NOT NULL DEFAULT 0, like_count INTEGER NOT NULL DEFAULT 0);
	INSERT INTO users (id, name, screen_name) VALUES (1, 'Ada', 'ada');
	INSERT INTO posts (id, body, created_at, user_id) VALUES
		(1, 'old', 'Fri Mar 01 12:00:00 +0000 2024', 1),
		(2, 'new', 'Sat Mar 02 12:00:00 +0000 2024', 1);
	`)
	raw.Close()
	if err != nil {
		t.Fatalf("seed old schema: %v", err)
	}

	database, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	var rows []models.PostWithAuthor
	if err := database.DB.Order("created_unix DESC").Find(&rows).Error; err != nil {
		t.Fatalf("query view: %v", err)
	}
	if len(rows) != 2 || rows[0].PostID != 2 || rows[0].CreatedUnix == 0 || rows[1].CreatedUnix == 0 {
		t.Fatalf("created_unix not backfilled: %+v", rows)
	}
	if rows[0].UserScreenName != "ada" {
		t.Fatalf("author not joined: %+v", rows[0])
	}
}

func TestUnixTime(t *testing.T) {
	if got := UnixTime("Thu Jan 01 00:01:40 +0000 1970"); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := UnixTime("not a date"); got != 0 {
		t.Fatalf("expected 0 for bad input, got %d", got)
	}
}
