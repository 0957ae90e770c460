package repositories

import (
	"context"

	"github.com/anonto42/murmur/backend/internal/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*models.Account, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Account, error)
	Exists(ctx context.Context, id string) (bool, error)
	FindInBatches(ctx context.Context, fn func(batch []models.Account) error) error
	Delete(ctx context.Context, id string) (*DeletedAccount, error)
	RecountFollows(ctx context.Context, ids []string) error
}

// DeletedAccount describes what an account removal took with it.
type DeletedAccount struct {
	PostIDs []string
}

// PostgresAccountRepository implements AccountRepository for PostgreSQL
type PostgresAccountRepository struct {
	db *gorm.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository
func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.Account) error {
	return translate(r.db.WithContext(ctx).Create(account).Error, "create account")
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, translate(err, "get account")
	}
	return &account, nil
}

func (r *PostgresAccountRepository) GetByFirebaseUID(ctx context.Context, uid string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", uid).First(&account).Error; err != nil {
		return nil, translate(err, "get account by firebase uid")
	}
	return &account, nil
}

// GetByIDs loads accounts keyed by id. Unknown ids are simply absent.
func (r *PostgresAccountRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Account, error) {
	result := make(map[string]models.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Where("id IN ?", uniqueIDs(ids)).Find(&accounts).Error; err != nil {
		return nil, translate(err, "get accounts")
	}
	for _, a := range accounts {
		result[a.ID] = a
	}
	return result, nil
}

func (r *PostgresAccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Count(&count).Error
	return count > 0, translate(err, "check account")
}

// FindInBatches streams every account ordered by id.
func (r *PostgresAccountRepository) FindInBatches(ctx context.Context, fn func(batch []models.Account) error) error {
	var batch []models.Account
	res := r.db.WithContext(ctx).Order("id").FindInBatches(&batch, BatchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	return translate(res.Error, "scan accounts")
}

// Delete removes an account with everything it authored or touched, then
// recounts the counters of the accounts and posts it was connected to.
func (r *PostgresAccountRepository) Delete(ctx context.Context, id string) (*DeletedAccount, error) {
	out := &DeletedAccount{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Where("id = ?", id).First(&account).Error; err != nil {
			return err
		}

		var postIDs, followingIDs, followerIDs, likedIDs, commentedIDs []string
		if err := tx.Model(&models.Post{}).Where("author_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Follow{}).Where("follower_id = ?", id).Pluck("following_id", &followingIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Follow{}).Where("following_id = ?", id).Pluck("follower_id", &followerIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Like{}).Where("account_id = ?", id).Pluck("post_id", &likedIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("author_id = ?", id).Pluck("post_id", &commentedIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("owner_id = ? OR author_id = ?", id, id).Delete(&models.FeedEntry{}).Error; err != nil {
			return err
		}
		likes := tx.Where("account_id = ?", id)
		comments := tx.Where("author_id = ?", id)
		if len(postIDs) > 0 {
			likes = tx.Where("account_id = ? OR post_id IN ?", id, postIDs)
			comments = tx.Where("author_id = ? OR post_id IN ?", id, postIDs)
		}
		if err := likes.Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := comments.Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR following_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		bookmarks := tx.Where("account_id = ?", id)
		if len(postIDs) > 0 {
			bookmarks = tx.Where("account_id = ? OR post_id IN ?", id, postIDs)
		}
		if err := bookmarks.Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("actor_id = ? OR recipient_id = ?", id, id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&account).Error; err != nil {
			return err
		}

		if err := recountAccounts(tx, uniqueIDs(followingIDs, followerIDs)); err != nil {
			return err
		}
		if err := recountPosts(tx, uniqueIDs(likedIDs, commentedIDs)); err != nil {
			return err
		}
		out.PostIDs = postIDs
		return nil
	})
	if err != nil {
		return nil, translate(err, "delete account")
	}
	return out, nil
}

// RecountFollows repairs follower/following counters. Nil ids means all.
func (r *PostgresAccountRepository) RecountFollows(ctx context.Context, ids []string) error {
	return translate(recountAccounts(r.db.WithContext(ctx), ids), "recount follows")
}
