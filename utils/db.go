package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/moodtunes/moodtunes-backend/model"
)

// ConnectDB opens the production Postgres database from DB_* env vars.
func ConnectDB() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getenvDefault("DB_HOST", "localhost"),
			getenvDefault("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			getenvDefault("DB_NAME", "moodtunes"),
			getenvDefault("DB_PORT", "5432"),
		)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates/updates tables for all persisted models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserFollow{},
		&model.UserBadge{},
		&model.MoodEntry{},
		&model.Comment{},
	)
}

// CreateTempDB creates a migrated, file-backed sqlite database scoped to a
// single test. Each call gets an isolated database under t.TempDir().
func CreateTempDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "moodtunes_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("fail to open temp db: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("fail to migrate temp db: %v", err)
	}
	return db
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
