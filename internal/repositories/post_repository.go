package repositories

import (
	"context"
	"time"

	"github.com/anonto42/murmur/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Post, error)
	ListRecent(ctx context.Context, before *time.Time, limit int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID string, before *time.Time, limit int) ([]models.Post, error)
	RecentByAuthor(ctx context.Context, authorID string, limit int) ([]models.Post, error)
	DeleteOwned(ctx context.Context, id, authorID string) (bool, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	LikeCount(ctx context.Context, id string) (int64, error)
	FindInBatches(ctx context.Context, fn func(batch []models.Post) error) error
	RecountEngagement(ctx context.Context, ids []string) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error, "create post")
}

func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err, "get post")
	}
	return &post, nil
}

// GetByIDs loads posts keyed by id. Unknown ids are simply absent.
func (r *PostgresPostRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Post, error) {
	result := make(map[string]models.Post, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var posts []models.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", uniqueIDs(ids)).Find(&posts).Error; err != nil {
		return nil, translate(err, "get posts")
	}
	for _, p := range posts {
		result[p.ID] = p
	}
	return result, nil
}

// ListRecent returns up to limit posts older than before, newest first.
func (r *PostgresPostRepository) ListRecent(ctx context.Context, before *time.Time, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := applyCursor(r.db.WithContext(ctx).Model(&models.Post{}), "created_at", before)
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&posts).Error
	return posts, translate(err, "list posts")
}

// ListByAuthor is ListRecent restricted to one author.
func (r *PostgresPostRepository) ListByAuthor(ctx context.Context, authorID string, before *time.Time, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := applyCursor(r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID), "created_at", before)
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&posts).Error
	return posts, translate(err, "list author posts")
}

func (r *PostgresPostRepository) RecentByAuthor(ctx context.Context, authorID string, limit int) ([]models.Post, error) {
	return r.ListByAuthor(ctx, authorID, nil, limit)
}

// DeleteOwned deletes a post together with its feed entries, likes,
// comments, bookmarks and notifications. It reports false when no post with
// that id belongs to authorID.
func (r *PostgresPostRepository) DeleteOwned(ctx context.Context, id, authorID string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND author_id = ?", id, authorID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if err := tx.Where("post_id = ?", id).Delete(&models.FeedEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetPost, id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error
	})
	if err != nil {
		return false, translate(err, "delete post")
	}
	return deleted, nil
}

func (r *PostgresPostRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, translate(err, "count author posts")
}

// LikeCount reads the cached like counter of a post.
func (r *PostgresPostRepository) LikeCount(ctx context.Context, id string) (int64, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("like_count").Where("id = ?", id).First(&post).Error; err != nil {
		return 0, translate(err, "read like count")
	}
	return post.LikeCount, nil
}

// FindInBatches streams every post ordered by id.
func (r *PostgresPostRepository) FindInBatches(ctx context.Context, fn func(batch []models.Post) error) error {
	var batch []models.Post
	res := r.db.WithContext(ctx).Order("id").FindInBatches(&batch, BatchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	return translate(res.Error, "scan posts")
}

// RecountEngagement repairs like/reply counters. Nil ids means all.
func (r *PostgresPostRepository) RecountEngagement(ctx context.Context, ids []string) error {
	return translate(recountPosts(r.db.WithContext(ctx), ids), "recount engagement")
}
