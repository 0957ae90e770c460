package repositories

import (
	"context"

	"github.com/anonto42/murmur/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	Exists(ctx context.Context, accountID, postID string) (bool, error)
	Like(ctx context.Context, accountID, postID string) (bool, error)
	Unlike(ctx context.Context, accountID, postID string) (bool, error)
	LikedPostIDs(ctx context.Context, accountID string, postIDs []string) (map[string]bool, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// Exists checks if an account has liked a specific post
func (r *PostgresLikeRepository) Exists(ctx context.Context, accountID, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("account_id = ? AND post_id = ?", accountID, postID).
		Count(&count).Error
	return count > 0, translate(err, "check like")
}

// Like records a like and bumps the post's like_count in one transaction.
// It reports false when the like already existed; the counter is untouched.
func (r *PostgresLikeRepository) Like(ctx context.Context, accountID, postID string) (bool, error) {
	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := insertIgnoringConflicts(tx, &models.Like{AccountID: accountID, PostID: postID})
		if err != nil || !ok {
			return err
		}
		inserted = true
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", increment("like_count")).Error
	})
	return inserted, translate(err, "like post")
}

// Unlike removes a like and decrements like_count, floored at zero.
// It reports false when there was nothing to remove.
func (r *PostgresLikeRepository) Unlike(ctx context.Context, accountID, postID string) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("account_id = ? AND post_id = ?", accountID, postID).Delete(&models.Like{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		removed = true
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", decrementFloor("like_count")).Error
	})
	return removed, translate(err, "unlike post")
}

// LikedPostIDs returns the subset of postIDs the account has liked.
func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, accountID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var liked []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("account_id = ? AND post_id IN ?", accountID, postIDs).
		Pluck("post_id", &liked).Error
	if err != nil {
		return nil, translate(err, "list liked posts")
	}
	for _, id := range liked {
		result[id] = true
	}
	return result, nil
}

// CountByPost counts the like rows of a post.
func (r *PostgresLikeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, translate(err, "count likes")
}
