package repositories

import (
	"context"

	"github.com/anonto42/murmur/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Follow(ctx context.Context, followerID, followingID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID string) (bool, error)
	FollowingIDs(ctx context.Context, followerID string, targetIDs []string) (map[string]bool, error)
	FollowerIDs(ctx context.Context, accountID string) ([]string, error)
	ListFollowers(ctx context.Context, accountID string, limit, offset int) ([]models.Account, error)
	ListFollowing(ctx context.Context, accountID string, limit, offset int) ([]models.Account, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, translate(err, "check follow")
}

// Follow inserts the edge and bumps both accounts' counters. It reports
// false when the edge already existed.
func (r *PostgresFollowRepository) Follow(ctx context.Context, followerID, followingID string) (bool, error) {
	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := insertIgnoringConflicts(tx, &models.Follow{FollowerID: followerID, FollowingID: followingID})
		if err != nil || !ok {
			return err
		}
		inserted = true
		if err := tx.Model(&models.Account{}).Where("id = ?", followerID).
			UpdateColumn("following_count", increment("following_count")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Account{}).Where("id = ?", followingID).
			UpdateColumn("follower_count", increment("follower_count")).Error
	})
	return inserted, translate(err, "follow")
}

// Unfollow removes the edge and decrements both counters, floored at zero.
func (r *PostgresFollowRepository) Unfollow(ctx context.Context, followerID, followingID string) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		removed = true
		if err := tx.Model(&models.Account{}).Where("id = ?", followerID).
			UpdateColumn("following_count", decrementFloor("following_count")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Account{}).Where("id = ?", followingID).
			UpdateColumn("follower_count", decrementFloor("follower_count")).Error
	})
	return removed, translate(err, "unfollow")
}

// FollowingIDs returns the subset of targetIDs followed by followerID.
func (r *PostgresFollowRepository) FollowingIDs(ctx context.Context, followerID string, targetIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(targetIDs) == 0 {
		return result, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, targetIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, translate(err, "list followed ids")
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// FollowerIDs lists every follower of an account.
func (r *PostgresFollowRepository) FollowerIDs(ctx context.Context, accountID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", accountID).
		Pluck("follower_id", &ids).Error
	return ids, translate(err, "list follower ids")
}

// ListFollowers returns the accounts following accountID, most recent edge first.
func (r *PostgresFollowRepository) ListFollowers(ctx context.Context, accountID string, limit, offset int) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Select("accounts.*").
		Joins("JOIN follows ON follows.follower_id = accounts.id").
		Where("follows.following_id = ?", accountID).
		Order("follows.created_at DESC").Order("follows.id DESC").
		Limit(limit).Offset(offset).
		Find(&accounts).Error
	return accounts, translate(err, "list followers")
}

// ListFollowing returns the accounts accountID follows, most recent edge first.
func (r *PostgresFollowRepository) ListFollowing(ctx context.Context, accountID string, limit, offset int) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Select("accounts.*").
		Joins("JOIN follows ON follows.following_id = accounts.id").
		Where("follows.follower_id = ?", accountID).
		Order("follows.created_at DESC").Order("follows.id DESC").
		Limit(limit).Offset(offset).
		Find(&accounts).Error
	return accounts, translate(err, "list following")
}
