// Package sqlitetest opens in-memory SQLite databases carrying the spaces
// and testimonials tables, for repository tests.
package sqlitetest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLite rejects the Postgres-only parts of the goose migrations, so the
// tables are declared here with portable column types.
var schema = []string{
	`CREATE TABLE spaces (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		slug TEXT NOT NULL,
		space_name TEXT NOT NULL,
		logo_url TEXT,
		header_title TEXT NOT NULL,
		custom_message TEXT,
		collect_star_rating BOOLEAN NOT NULL DEFAULT 1,
		widget_settings TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME,
		updated_at DATETIME,
		CONSTRAINT spaces_slug_key UNIQUE (slug)
	)`,
	`CREATE TABLE testimonials (
		id TEXT PRIMARY KEY,
		space_id TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'text',
		content TEXT,
		video_url TEXT,
		rating INTEGER,
		respondent_name TEXT NOT NULL,
		respondent_email TEXT,
		respondent_photo_url TEXT,
		is_liked BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		deleted_at DATETIME
	)`,
}

// Open returns a fresh database. The pool is pinned to one connection so
// the in-memory database survives for the whole test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}
