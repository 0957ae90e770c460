package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"

	TargetPost    = "post"
	TargetAccount = "account"
)

// Notification tells RecipientID that ActorID acted on one of its posts or
// on the account itself.
type Notification struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Type        string    `json:"type" gorm:"size:30;not null"`
	ActorID     string    `json:"actor_id" gorm:"type:varchar(36);not null;index:idx_notifications_actor"`
	RecipientID string    `json:"recipient_id" gorm:"type:varchar(36);not null;index:idx_notifications_recipient_created,priority:1"`
	TargetID    string    `json:"target_id" gorm:"type:varchar(36);not null;index:idx_notifications_target"`
	TargetType  string    `json:"target_type" gorm:"size:20;not null"`
	CommentID   *string   `json:"comment_id,omitempty" gorm:"type:varchar(36)"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_notifications_recipient_created,priority:2"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = Now()
	}
	return nil
}

// NotificationView is a notification with its actor's summary.
type NotificationView struct {
	Notification
	Actor AccountSummary `json:"actor"`
}
