package services

import (
	"context"
	"log"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/pkg/errors"
)

// EngagementService owns likes and comments together with the post
// counters they feed.
type EngagementService struct {
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	accounts repositories.AccountRepository
	notifier Notifier
}

// NewEngagementService wires the service. A nil notifier drops activity
// events.
func NewEngagementService(posts repositories.PostRepository, likes repositories.LikeRepository, comments repositories.CommentRepository, accounts repositories.AccountRepository, notifier Notifier) *EngagementService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &EngagementService{posts: posts, likes: likes, comments: comments, accounts: accounts, notifier: notifier}
}

func (s *EngagementService) requirePost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return post, err
}

// ToggleLike flips the like of accountID on postID. The existence check runs
// outside the write transaction; a concurrent writer that wins the race
// leaves this call as a no-op on the counter.
func (s *EngagementService) ToggleLike(ctx context.Context, accountID, postID string) (*models.LikeStatus, error) {
	post, err := s.requirePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likes.Exists(ctx, accountID, postID)
	if err != nil {
		return nil, err
	}
	var changed bool
	if liked {
		changed, err = s.likes.Unlike(ctx, accountID, postID)
	} else {
		changed, err = s.likes.Like(ctx, accountID, postID)
	}
	if err != nil {
		return nil, err
	}
	switch {
	case changed && liked:
		s.notifier.Unliked(ctx, accountID, postID)
	case changed:
		s.notifier.Liked(ctx, accountID, *post)
	}

	count, err := s.posts.LikeCount(ctx, postID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.LikeStatus{Liked: !liked, LikeCount: count}, nil
}

func (s *EngagementService) IsLiked(ctx context.Context, accountID, postID string) (bool, error) {
	return s.likes.Exists(ctx, accountID, postID)
}

// BatchLikeStatus reports, for every requested post id, whether accountID
// liked it. Lookup failures degrade to an empty map.
func (s *EngagementService) BatchLikeStatus(ctx context.Context, accountID string, postIDs []string) map[string]bool {
	ids := normalizeIDs(postIDs)
	if len(ids) == 0 {
		return map[string]bool{}
	}
	hits, err := s.likes.LikedPostIDs(ctx, accountID, ids)
	if err != nil {
		log.Printf("batch like status for %s failed: %v", accountID, err)
		return map[string]bool{}
	}
	return fillStatus(ids, hits)
}

// AddComment stores a comment and bumps the post's reply counter.
func (s *EngagementService) AddComment(ctx context.Context, accountID, postID, content string) (*models.Comment, error) {
	content, err := normalizeText(content, models.MaxCommentLength)
	if err != nil {
		return nil, err
	}
	post, err := s.requirePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, AuthorID: accountID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.notifier.Commented(ctx, accountID, *post, *comment)
	return comment, nil
}

// DeleteComment removes a comment written by callerID.
func (s *EngagementService) DeleteComment(ctx context.Context, commentID, callerID string) error {
	_, err := s.comments.DeleteOwned(ctx, commentID, callerID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.notifier.CommentRemoved(ctx, commentID)
	return nil
}

// ListComments returns a page of comments on postID, newest first.
func (s *EngagementService) ListComments(ctx context.Context, postID string, limit, offset int) ([]models.CommentView, error) {
	if _, err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	limit = ClampLimit(limit, DefaultCommentLimit, MaxCommentLimit)
	if offset < 0 {
		offset = 0
	}

	comments, err := s.comments.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	authors, err := s.accounts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		author := models.AccountSummary{ID: c.AuthorID}
		if a, ok := authors[c.AuthorID]; ok {
			author = a.ToSummary()
		}
		views = append(views, models.CommentView{Comment: c, Author: author})
	}
	return views, nil
}

// LikeCount counts like rows, ignoring the cached counter.
func (s *EngagementService) LikeCount(ctx context.Context, postID string) (int64, error) {
	return s.likes.CountByPost(ctx, postID)
}
