package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a platform identity with denormalized follow counters.
type Account struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name           string    `json:"name" gorm:"size:100;not null"`
	Handle         string    `json:"handle" gorm:"size:50;not null;uniqueIndex:idx_accounts_handle"`
	Bio            string    `json:"bio" gorm:"type:text"`
	AvatarURL      *string   `json:"avatar_url" gorm:"size:500"`
	FirebaseUID    *string   `json:"-" gorm:"size:128;uniqueIndex:idx_accounts_firebase_uid"`
	FollowerCount  int64     `json:"follower_count" gorm:"not null;default:0"`
	FollowingCount int64     `json:"following_count" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_accounts_created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = Now()
		a.UpdatedAt = a.CreatedAt
	}
	return nil
}

// AccountSummary is the compact author shape embedded in timelines and lists.
type AccountSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Handle         string  `json:"handle"`
	AvatarURL      *string `json:"avatar_url"`
	FollowerCount  int64   `json:"follower_count"`
	FollowingCount int64   `json:"following_count"`
}

func (a Account) ToSummary() AccountSummary {
	return AccountSummary{
		ID:             a.ID,
		Name:           a.Name,
		Handle:         a.Handle,
		AvatarURL:      a.AvatarURL,
		FollowerCount:  a.FollowerCount,
		FollowingCount: a.FollowingCount,
	}
}

// CreateAccountRequest is used by operator tooling to provision accounts.
type CreateAccountRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Handle      string `json:"handle" validate:"required,min=2,max=50,alphanum"`
	Bio         string `json:"bio" validate:"max=500"`
	FirebaseUID string `json:"firebase_uid,omitempty"`
}

// JwtCustomClaims are the claims carried by locally issued access tokens.
type JwtCustomClaims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// Now returns the current UTC time truncated to the millisecond precision
// used by timeline cursors.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
