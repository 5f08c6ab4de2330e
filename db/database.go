package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agnosto/chirp/db/models"
	"github.com/agnosto/chirp/logger"
	"github.com/agnosto/chirp/posts"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Database represents the database connection
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens timeline.db under saveLocation.
func NewDatabase(saveLocation string) (*Database, error) {
	if err := os.MkdirAll(saveLocation, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create save location: %w", err)
	}
	return Open(filepath.Join(saveLocation, "timeline.db"))
}

// Open opens (or creates) the cache at dbPath and brings its schema up to date.
func Open(dbPath string) (*Database, error) {
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	needsBackfill, err := checkOldSchema(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to check database schema: %w", err)
	}

	logConfig := gormlogger.Config{
		LogLevel: gormlogger.Warn, // Log only warnings and errors
		Colorful: false,
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: "sqlite",
		DSN:        dsn,
	}), &gorm.Config{
		Logger: gormlogger.New(logger.Logger, logConfig),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// If we need to migrate from the old schema
	if needsBackfill {
		if err := migrateOldSchema(db); err != nil {
			return nil, fmt.Errorf("failed to migrate old schema: %w", err)
		}
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Database{DB: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.Exec(models.Schema).Error; err != nil {
		return err
	}
	if err := db.Exec(`DROP VIEW IF EXISTS post_with_author`).Error; err != nil {
		return err
	}
	return db.Exec(models.PostWithAuthorView).Error
}

// checkOldSchema reports whether an existing posts table predates created_unix.
func checkOldSchema(dsn string) (bool, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return false, nil
	}
	defer sqlDB.Close()

	var tables int
	err = sqlDB.QueryRow(`SELECT COUNT(*) FROM sqlite_master
                         WHERE type='table' AND name='posts'`).Scan(&tables)
	if err != nil || tables == 0 {
		return false, err
	}

	var columns int
	err = sqlDB.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('posts')
                         WHERE name='created_unix'`).Scan(&columns)
	if err != nil {
		return false, err
	}

	return columns == 0, nil
}

// migrateOldSchema adds created_unix and derives it for rows written before the
// column existed.
func migrateOldSchema(db *gorm.DB) error {
	if err := db.Exec(`ALTER TABLE posts ADD COLUMN created_unix INTEGER NOT NULL DEFAULT 0`).Error; err != nil {
		return err
	}

	var rows []models.Post
	if err := db.Select("id", "created_at").Where("created_unix = 0").Find(&rows).Error; err != nil {
		return err
	}

	logger.Logger.Printf("[INFO] Backfilling created_unix for %d cached posts", len(rows))
	return db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			unix := UnixTime(row.CreatedAt)
			if err := tx.Model(&models.Post{}).Where("id = ?", row.ID).Update("created_unix", unix).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UnixTime converts an API timestamp to seconds, or 0 when it does not parse.
func UnixTime(createdAt string) int64 {
	t := posts.Post{CreatedAt: createdAt}.CreatedTime()
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
