package repositories

import (
	"context"
	"time"

	"github.com/anonto42/murmur/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedRepository stores the materialized home feeds.
type FeedRepository interface {
	Insert(ctx context.Context, entries []models.FeedEntry) error
	ListByOwner(ctx context.Context, ownerID string, before *time.Time, limit int) ([]models.Post, error)
	DeleteByOwnerAndAuthor(ctx context.Context, ownerID, authorID string) (int64, error)
}

// PostgresFeedRepository implements FeedRepository for PostgreSQL
type PostgresFeedRepository struct {
	db *gorm.DB
}

// NewPostgresFeedRepository creates a new PostgresFeedRepository
func NewPostgresFeedRepository(db *gorm.DB) *PostgresFeedRepository {
	return &PostgresFeedRepository{db: db}
}

// Insert writes entries in batches. Entries already present for the same
// (owner, post) pair are skipped, so repeated fan-outs are harmless.
func (r *PostgresFeedRepository) Insert(ctx context.Context, entries []models.FeedEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&entries, BatchSize).Error
	return translate(err, "insert feed entries")
}

// ListByOwner returns the posts on an owner's feed older than before,
// newest first.
func (r *PostgresFeedRepository) ListByOwner(ctx context.Context, ownerID string, before *time.Time, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).
		Table("feed_entries").
		Select("posts.*").
		Joins("JOIN posts ON posts.id = feed_entries.post_id").
		Where("feed_entries.owner_id = ?", ownerID)
	q = applyCursor(q, "feed_entries.created_at", before)
	err := q.Order("feed_entries.created_at DESC").Order("feed_entries.post_id DESC").Limit(limit).Find(&posts).Error
	return posts, translate(err, "list feed")
}

func (r *PostgresFeedRepository) DeleteByOwnerAndAuthor(ctx context.Context, ownerID, authorID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("owner_id = ? AND author_id = ?", ownerID, authorID).Delete(&models.FeedEntry{})
	return res.RowsAffected, translate(res.Error, "prune feed")
}
