package services

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/pkg/errors"
)

// FeedWriter distributes a freshly created post to home feeds.
type FeedWriter interface {
	FanOut(ctx context.Context, post models.Post) error
}

// PostService creates, reads and deletes posts.
type PostService struct {
	posts    repositories.PostRepository
	accounts repositories.AccountRepository
	feed     FeedWriter
	indexer  PostIndexer
}

func NewPostService(posts repositories.PostRepository, accounts repositories.AccountRepository, feed FeedWriter, indexer PostIndexer) *PostService {
	if indexer == nil {
		indexer = NopIndexer{}
	}
	return &PostService{posts: posts, accounts: accounts, feed: feed, indexer: indexer}
}

// normalizeText trims s and checks it holds 1..max characters. The trimmed
// text is stored byte for byte.
func normalizeText(s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > max {
		return "", ErrInvalidContent
	}
	return s, nil
}

// Create validates and stores a post, then fans it out and queues it for
// indexing. Neither side effect can fail the call.
func (s *PostService) Create(ctx context.Context, authorID, content string, mediaURL *string) (*models.Post, error) {
	content, err := normalizeText(content, models.MaxPostLength)
	if err != nil {
		return nil, err
	}
	ok, err := s.accounts.Exists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	if mediaURL != nil {
		trimmed := strings.TrimSpace(*mediaURL)
		if trimmed == "" {
			mediaURL = nil
		} else {
			mediaURL = &trimmed
		}
	}

	post := &models.Post{AuthorID: authorID, Content: content, MediaURL: mediaURL}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.feed != nil {
		if err := s.feed.FanOut(ctx, *post); err != nil {
			log.Printf("fan-out of post %s failed: %v", post.ID, err)
		}
	}
	s.indexer.IndexPost(*post)
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return post, err
}

// Delete removes a post owned by callerID. Posts that are missing and posts
// owned by someone else are indistinguishable to the caller.
func (s *PostService) Delete(ctx context.Context, id, callerID string) error {
	deleted, err := s.posts.DeleteOwned(ctx, id, callerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.indexer.RemovePost(id)
	return nil
}

func (s *PostService) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	return s.posts.CountByAuthor(ctx, authorID)
}
