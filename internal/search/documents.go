// Package search keeps a MongoDB document index of accounts and posts in
// step with the relational store and answers weighted fuzzy queries over it.
package search

import (
	"time"

	"github.com/anonto42/murmur/backend/internal/models"
)

// Result types.
const (
	TypeAccount = "account"
	TypePost    = "post"
)

// AccountDocument is the indexed shape of an account.
type AccountDocument struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Handle    string    `bson:"handle" json:"handle"`
	Bio       string    `bson:"bio" json:"bio"`
	AvatarURL *string   `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// PostDocument is the indexed shape of a post, denormalized with its
// author's name and handle.
type PostDocument struct {
	ID           string    `bson:"_id" json:"id"`
	Content      string    `bson:"content" json:"content"`
	AuthorID     string    `bson:"author_id" json:"author_id"`
	AuthorName   string    `bson:"author_name" json:"author_name"`
	AuthorHandle string    `bson:"author_handle" json:"author_handle"`
	MediaURL     *string   `bson:"media_url,omitempty" json:"media_url,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// AccountHit is a candidate account with the backend's own relevance score.
type AccountHit struct {
	AccountDocument `bson:",inline"`
	TextScore       float64 `bson:"score,omitempty"`
}

// PostHit is a candidate post with the backend's own relevance score.
type PostHit struct {
	PostDocument `bson:",inline"`
	TextScore    float64 `bson:"score,omitempty"`
}

// Result is one entry of a unified search response.
type Result struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Score     float64   `json:"score"`
}

func accountDocument(a models.Account) AccountDocument {
	return AccountDocument{
		ID:        a.ID,
		Name:      a.Name,
		Handle:    a.Handle,
		Bio:       a.Bio,
		AvatarURL: a.AvatarURL,
		CreatedAt: a.CreatedAt,
	}
}

func postDocument(p models.Post, author *models.Account) PostDocument {
	doc := PostDocument{
		ID:        p.ID,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		MediaURL:  p.MediaURL,
		CreatedAt: p.CreatedAt,
	}
	if author != nil {
		doc.AuthorName = author.Name
		doc.AuthorHandle = author.Handle
	}
	return doc
}
