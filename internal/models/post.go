package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxPostLength is the maximum post length in characters, counted after trimming.
const MaxPostLength = 280

// Post is a murmur. Counters are caches over likes and comments rows.
type Post struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AuthorID    string    `json:"author_id" gorm:"type:varchar(36);not null;index:idx_posts_author_created,priority:1"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	MediaURL    *string   `json:"media_url" gorm:"size:500"`
	LikeCount   int64     `json:"like_count" gorm:"not null;default:0"`
	ReplyCount  int64     `json:"reply_count" gorm:"not null;default:0"`
	RepostCount int64     `json:"repost_count" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_posts_author_created,priority:2;index:idx_posts_created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = Now()
		p.UpdatedAt = p.CreatedAt
	}
	return nil
}

// CreatePostRequest defines the request body for creating a new post.
// Length is enforced on the trimmed content by the post service.
type CreatePostRequest struct {
	Content  string `json:"content" validate:"required"`
	MediaURL string `json:"media_url,omitempty" validate:"omitempty,url,max=500"`
}

// TimelinePost is a post together with its author's summary.
type TimelinePost struct {
	Post
	Author AccountSummary `json:"author"`
}

// TimelinePage is one keyset-paginated slice of a timeline.
type TimelinePage struct {
	Posts      []TimelinePost `json:"posts"`
	NextCursor *string        `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}
