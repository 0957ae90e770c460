package repositories

import (
	"context"

	"github.com/anonto42/murmur/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]models.Comment, error)
	DeleteOwned(ctx context.Context, id, authorID string) (*models.Comment, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// Create stores a comment and increments the post's reply_count.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("reply_count", increment("reply_count")).Error
	})
	return translate(err, "create comment")
}

// ListByPost returns a page of a post's comments, newest first.
func (r *PostgresCommentRepository) ListByPost(ctx context.Context, postID string, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	return comments, translate(err, "list comments")
}

// DeleteOwned deletes a comment written by authorID and decrements the
// post's reply_count. A missing comment and a foreign one both yield
// ErrRecordNotFound.
func (r *PostgresCommentRepository) DeleteOwned(ctx context.Context, id, authorID string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND author_id = ?", id, authorID).First(&comment).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", comment.ID).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("reply_count", decrementFloor("reply_count")).Error
	})
	if err != nil {
		return nil, translate(err, "delete comment")
	}
	return &comment, nil
}
