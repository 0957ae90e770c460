package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedEntry places a post on an owner's home feed. CreatedAt mirrors the
// post's creation time so backfilled entries keep timeline order.
type FeedEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string    `json:"owner_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_feed_owner_post,priority:1;index:idx_feed_owner_created,priority:1"`
	PostID    string    `json:"post_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_feed_owner_post,priority:2;index:idx_feed_post"`
	AuthorID  string    `json:"author_id" gorm:"type:varchar(36);not null;index:idx_feed_author"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_feed_owner_created,priority:2"`
}

func (f *FeedEntry) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
