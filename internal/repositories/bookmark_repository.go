package repositories

import (
	"context"
	"time"

	"github.com/anonto42/murmur/backend/internal/models"
	"gorm.io/gorm"
)

// BookmarkRepository defines the interface for bookmark operations
type BookmarkRepository interface {
	Exists(ctx context.Context, accountID, postID string) (bool, error)
	Add(ctx context.Context, accountID, postID string) (bool, error)
	Remove(ctx context.Context, accountID, postID string) (bool, error)
	BookmarkedPostIDs(ctx context.Context, accountID string, postIDs []string) (map[string]bool, error)
	ListByAccount(ctx context.Context, accountID string, before *time.Time, limit int) ([]models.Bookmark, error)
}

// PostgresBookmarkRepository implements BookmarkRepository
type PostgresBookmarkRepository struct {
	db *gorm.DB
}

func NewPostgresBookmarkRepository(db *gorm.DB) *PostgresBookmarkRepository {
	return &PostgresBookmarkRepository{db: db}
}

func (r *PostgresBookmarkRepository) Exists(ctx context.Context, accountID, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bookmark{}).
		Where("account_id = ? AND post_id = ?", accountID, postID).
		Count(&count).Error
	return count > 0, translate(err, "check bookmark")
}

// Add saves postID for accountID. It reports false when it was already saved.
func (r *PostgresBookmarkRepository) Add(ctx context.Context, accountID, postID string) (bool, error) {
	ok, err := insertIgnoringConflicts(r.db.WithContext(ctx), &models.Bookmark{AccountID: accountID, PostID: postID})
	return ok, translate(err, "add bookmark")
}

// Remove reports false when there was nothing to remove.
func (r *PostgresBookmarkRepository) Remove(ctx context.Context, accountID, postID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("account_id = ? AND post_id = ?", accountID, postID).Delete(&models.Bookmark{})
	if res.Error != nil {
		return false, translate(res.Error, "remove bookmark")
	}
	return res.RowsAffected > 0, nil
}

// BookmarkedPostIDs returns the subset of postIDs the account has saved.
func (r *PostgresBookmarkRepository) BookmarkedPostIDs(ctx context.Context, accountID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var saved []string
	err := r.db.WithContext(ctx).Model(&models.Bookmark{}).
		Where("account_id = ? AND post_id IN ?", accountID, postIDs).
		Pluck("post_id", &saved).Error
	if err != nil {
		return nil, translate(err, "list bookmarked posts")
	}
	for _, id := range saved {
		result[id] = true
	}
	return result, nil
}

// ListByAccount returns up to limit bookmarks saved before before, most
// recently saved first.
func (r *PostgresBookmarkRepository) ListByAccount(ctx context.Context, accountID string, before *time.Time, limit int) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	q := applyCursor(r.db.WithContext(ctx).Model(&models.Bookmark{}).Where("account_id = ?", accountID), "created_at", before)
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&bookmarks).Error
	return bookmarks, translate(err, "list bookmarks")
}
