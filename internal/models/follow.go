package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow represents a directed follow edge
type Follow struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FollowerID  string    `json:"follower_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_follower_following,priority:1"`
	FollowingID string    `json:"following_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_follower_following,priority:2;index:idx_follows_following"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_follows_created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = Now()
	}
	return nil
}

// FollowStatus is the result of a follow toggle.
type FollowStatus struct {
	Following bool `json:"following"`
}
