package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bookmark is a post saved by an account for later reading. Bookmarks are
// private and carry no counter.
type Bookmark struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AccountID string    `json:"account_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_bookmark_account_post,priority:1;index:idx_bookmarks_account_created,priority:1"`
	PostID    string    `json:"post_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_bookmark_account_post,priority:2;index:idx_bookmarks_post"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_bookmarks_account_created,priority:2"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = Now()
	}
	return nil
}

type BookmarkStatus struct {
	Bookmarked bool `json:"bookmarked"`
}
