package services

import (
	"context"
	"log"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/pkg/errors"
)

// BookmarkService keeps each account's private list of saved posts.
type BookmarkService struct {
	bookmarks repositories.BookmarkRepository
	posts     repositories.PostRepository
	accounts  repositories.AccountRepository
}

func NewBookmarkService(bookmarks repositories.BookmarkRepository, posts repositories.PostRepository, accounts repositories.AccountRepository) *BookmarkService {
	return &BookmarkService{bookmarks: bookmarks, posts: posts, accounts: accounts}
}

// ToggleBookmark saves postID for accountID, or removes it when already saved.
func (s *BookmarkService) ToggleBookmark(ctx context.Context, accountID, postID string) (*models.BookmarkStatus, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	saved, err := s.bookmarks.Exists(ctx, accountID, postID)
	if err != nil {
		return nil, err
	}
	if saved {
		_, err = s.bookmarks.Remove(ctx, accountID, postID)
	} else {
		_, err = s.bookmarks.Add(ctx, accountID, postID)
	}
	if err != nil {
		return nil, err
	}
	return &models.BookmarkStatus{Bookmarked: !saved}, nil
}

func (s *BookmarkService) IsBookmarked(ctx context.Context, accountID, postID string) (bool, error) {
	return s.bookmarks.Exists(ctx, accountID, postID)
}

// BatchBookmarkStatus reports, for every requested post id, whether
// accountID saved it. Lookup failures degrade to an empty map.
func (s *BookmarkService) BatchBookmarkStatus(ctx context.Context, accountID string, postIDs []string) map[string]bool {
	ids := normalizeIDs(postIDs)
	if len(ids) == 0 {
		return map[string]bool{}
	}
	hits, err := s.bookmarks.BookmarkedPostIDs(ctx, accountID, ids)
	if err != nil {
		log.Printf("batch bookmark status for %s failed: %v", accountID, err)
		return map[string]bool{}
	}
	return fillStatus(ids, hits)
}

// ListBookmarks pages through accountID's saved posts, most recently saved
// first. The cursor is the save time of the last bookmark on the page.
func (s *BookmarkService) ListBookmarks(ctx context.Context, accountID string, limit int, cursor string) (*models.TimelinePage, error) {
	limit = ClampLimit(limit, DefaultTimelineLimit, MaxTimelineLimit)
	before, err := ParseCursor(cursor)
	if err != nil {
		return nil, err
	}

	rows, err := s.bookmarks.ListByAccount(ctx, accountID, before, limit+1)
	if err != nil {
		return nil, err
	}

	page := &models.TimelinePage{}
	if len(rows) > limit {
		rows = rows[:limit]
		next := FormatCursor(rows[limit-1].CreatedAt)
		page.NextCursor = &next
		page.HasMore = true
	}

	ids := make([]string, 0, len(rows))
	for _, b := range rows {
		ids = append(ids, b.PostID)
	}
	byID, err := s.posts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(rows))
	for _, b := range rows {
		if p, ok := byID[b.PostID]; ok {
			posts = append(posts, p)
		}
	}

	page.Posts, err = attachAuthors(ctx, s.accounts, posts)
	if err != nil {
		return nil, err
	}
	return page, nil
}
