package services

import (
	"context"
	"time"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
)

// BackfillSize is how many of a followee's recent posts land in a new
// follower's feed.
const BackfillSize = 50

// TimelineService writes home feeds on post creation and serves the
// keyset-paginated timelines.
type TimelineService struct {
	posts    repositories.PostRepository
	feed     repositories.FeedRepository
	follows  repositories.FollowRepository
	accounts repositories.AccountRepository
}

func NewTimelineService(posts repositories.PostRepository, feed repositories.FeedRepository, follows repositories.FollowRepository, accounts repositories.AccountRepository) *TimelineService {
	return &TimelineService{posts: posts, feed: feed, follows: follows, accounts: accounts}
}

// FanOut places post on its author's feed and on the feed of every current
// follower of the author.
func (s *TimelineService) FanOut(ctx context.Context, post models.Post) error {
	followers, err := s.follows.FollowerIDs(ctx, post.AuthorID)
	if err != nil {
		return err
	}
	owners := append([]string{post.AuthorID}, followers...)
	for start := 0; start < len(owners); start += repositories.BatchSize {
		end := start + repositories.BatchSize
		if end > len(owners) {
			end = len(owners)
		}
		entries := make([]models.FeedEntry, 0, end-start)
		for _, owner := range owners[start:end] {
			entries = append(entries, feedEntry(owner, post))
		}
		if err := s.feed.Insert(ctx, entries); err != nil {
			return err
		}
	}
	return nil
}

// Backfill copies the followee's most recent posts into the follower's feed.
func (s *TimelineService) Backfill(ctx context.Context, followerID, followingID string) error {
	posts, err := s.posts.RecentByAuthor(ctx, followingID, BackfillSize)
	if err != nil {
		return err
	}
	entries := make([]models.FeedEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, feedEntry(followerID, p))
	}
	return s.feed.Insert(ctx, entries)
}

// Prune drops the followee's posts from the follower's feed.
func (s *TimelineService) Prune(ctx context.Context, followerID, followingID string) error {
	_, err := s.feed.DeleteByOwnerAndAuthor(ctx, followerID, followingID)
	return err
}

func feedEntry(owner string, post models.Post) models.FeedEntry {
	return models.FeedEntry{
		OwnerID:   owner,
		PostID:    post.ID,
		AuthorID:  post.AuthorID,
		CreatedAt: post.CreatedAt,
	}
}

// GlobalTimeline pages through every post, newest first.
func (s *TimelineService) GlobalTimeline(ctx context.Context, limit int, cursor string) (*models.TimelinePage, error) {
	return s.page(ctx, limit, cursor, func(before *time.Time, n int) ([]models.Post, error) {
		return s.posts.ListRecent(ctx, before, n)
	})
}

// AuthorTimeline pages through one author's posts.
func (s *TimelineService) AuthorTimeline(ctx context.Context, authorID string, limit int, cursor string) (*models.TimelinePage, error) {
	ok, err := s.accounts.Exists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.page(ctx, limit, cursor, func(before *time.Time, n int) ([]models.Post, error) {
		return s.posts.ListByAuthor(ctx, authorID, before, n)
	})
}

// HomeFeed pages through the viewer's feed: followed accounts and own posts.
func (s *TimelineService) HomeFeed(ctx context.Context, viewerID string, limit int, cursor string) (*models.TimelinePage, error) {
	return s.page(ctx, limit, cursor, func(before *time.Time, n int) ([]models.Post, error) {
		return s.feed.ListByOwner(ctx, viewerID, before, n)
	})
}

// page runs fetch for limit+1 rows and trims the extra row into HasMore.
func (s *TimelineService) page(ctx context.Context, limit int, cursor string, fetch func(before *time.Time, n int) ([]models.Post, error)) (*models.TimelinePage, error) {
	limit = ClampLimit(limit, DefaultTimelineLimit, MaxTimelineLimit)
	before, err := ParseCursor(cursor)
	if err != nil {
		return nil, err
	}

	rows, err := fetch(before, limit+1)
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

	page.Posts, err = attachAuthors(ctx, s.accounts, rows)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// attachAuthors pairs each post with its author's summary using one batched
// account lookup.
func attachAuthors(ctx context.Context, accounts repositories.AccountRepository, posts []models.Post) ([]models.TimelinePost, error) {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	authors, err := accounts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.TimelinePost, 0, len(posts))
	for _, p := range posts {
		author := models.AccountSummary{ID: p.AuthorID}
		if a, ok := authors[p.AuthorID]; ok {
			author = a.ToSummary()
		}
		out = append(out, models.TimelinePost{Post: p, Author: author})
	}
	return out, nil
}
