// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateAccount inserts an account with the given handle.
func CreateAccount(t *testing.T, db *gorm.DB, handle string) models.Account {
	t.Helper()
	account := models.Account{Name: "Test " + handle, Handle: handle}
	require.NoError(t, db.WithContext(context.Background()).Create(&account).Error)
	return account
}

// CreatePostAt inserts a post by author with an explicit creation time.
func CreatePostAt(t *testing.T, db *gorm.DB, authorID, content string, at time.Time) models.Post {
	t.Helper()
	at = at.UTC().Truncate(time.Millisecond)
	post := models.Post{AuthorID: authorID, Content: content, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, db.Create(&post).Error)
	return post
}
