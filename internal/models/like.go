package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like is the authoritative record that an account liked a post.
type Like struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AccountID string    `json:"account_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_like_account_post,priority:1"`
	PostID    string    `json:"post_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_like_account_post,priority:2;index:idx_likes_post"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = Now()
	}
	return nil
}

// LikeStatus is the result of a like toggle.
type LikeStatus struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}
