package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCommentLength is the maximum comment length in characters.
const MaxCommentLength = 500

// Comment represents a reply on a post
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PostID    string    `json:"post_id" gorm:"type:varchar(36);not null;index:idx_comments_post_created,priority:1"`
	AuthorID  string    `json:"author_id" gorm:"type:varchar(36);not null;index:idx_comments_author"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_comments_post_created,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = Now()
		c.UpdatedAt = c.CreatedAt
	}
	return nil
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// CommentView is a comment with its author's summary.
type CommentView struct {
	Comment
	Author AccountSummary `json:"author"`
}
