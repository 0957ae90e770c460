package services

import (
	"context"
	"log"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/repositories"
)

const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100
)

// Notifier records activity for the account it affects. Calls never fail the
// write that triggered them.
type Notifier interface {
	Liked(ctx context.Context, actorID string, post models.Post)
	Unliked(ctx context.Context, actorID, postID string)
	Commented(ctx context.Context, actorID string, post models.Post, comment models.Comment)
	CommentRemoved(ctx context.Context, commentID string)
	Followed(ctx context.Context, actorID, targetID string)
	Unfollowed(ctx context.Context, actorID, targetID string)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Liked(context.Context, string, models.Post)                    {}
func (NopNotifier) Unliked(context.Context, string, string)                       {}
func (NopNotifier) Commented(context.Context, string, models.Post, models.Comment) {}
func (NopNotifier) CommentRemoved(context.Context, string)                        {}
func (NopNotifier) Followed(context.Context, string, string)                      {}
func (NopNotifier) Unfollowed(context.Context, string, string)                    {}

// NotificationService stores activity notifications and serves each
// recipient's inbox.
type NotificationService struct {
	notifications repositories.NotificationRepository
	accounts      repositories.AccountRepository
}

func NewNotificationService(notifications repositories.NotificationRepository, accounts repositories.AccountRepository) *NotificationService {
	return &NotificationService{notifications: notifications, accounts: accounts}
}

func (s *NotificationService) create(ctx context.Context, n *models.Notification) {
	if n.ActorID == n.RecipientID {
		return
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		log.Printf("storing %s notification for %s failed: %v", n.Type, n.RecipientID, err)
	}
}

func (s *NotificationService) retract(ctx context.Context, kind, actorID, targetID string) {
	if _, err := s.notifications.Retract(ctx, kind, actorID, targetID); err != nil {
		log.Printf("retracting %s notification from %s failed: %v", kind, actorID, err)
	}
}

func (s *NotificationService) Liked(ctx context.Context, actorID string, post models.Post) {
	s.create(ctx, &models.Notification{
		Type:        models.NotificationLike,
		ActorID:     actorID,
		RecipientID: post.AuthorID,
		TargetID:    post.ID,
		TargetType:  models.TargetPost,
		Message:     "liked your post",
	})
}

func (s *NotificationService) Unliked(ctx context.Context, actorID, postID string) {
	s.retract(ctx, models.NotificationLike, actorID, postID)
}

func (s *NotificationService) Commented(ctx context.Context, actorID string, post models.Post, comment models.Comment) {
	commentID := comment.ID
	s.create(ctx, &models.Notification{
		Type:        models.NotificationComment,
		ActorID:     actorID,
		RecipientID: post.AuthorID,
		TargetID:    post.ID,
		TargetType:  models.TargetPost,
		CommentID:   &commentID,
		Message:     "commented on your post",
	})
}

func (s *NotificationService) CommentRemoved(ctx context.Context, commentID string) {
	if _, err := s.notifications.RetractComment(ctx, commentID); err != nil {
		log.Printf("retracting notification for comment %s failed: %v", commentID, err)
	}
}

func (s *NotificationService) Followed(ctx context.Context, actorID, targetID string) {
	s.create(ctx, &models.Notification{
		Type:        models.NotificationFollow,
		ActorID:     actorID,
		RecipientID: targetID,
		TargetID:    targetID,
		TargetType:  models.TargetAccount,
		Message:     "started following you",
	})
}

func (s *NotificationService) Unfollowed(ctx context.Context, actorID, targetID string) {
	s.retract(ctx, models.NotificationFollow, actorID, targetID)
}

// List returns recipientID's notifications, newest first, each with the
// acting account's summary.
func (s *NotificationService) List(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]models.NotificationView, error) {
	limit = ClampLimit(limit, DefaultNotificationLimit, MaxNotificationLimit)
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.notifications.ListByRecipient(ctx, recipientID, limit, offset, unreadOnly)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(notifications))
	for _, n := range notifications {
		ids = append(ids, n.ActorID)
	}
	actors, err := s.accounts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		actor := models.AccountSummary{ID: n.ActorID}
		if a, ok := actors[n.ActorID]; ok {
			actor = a.ToSummary()
		}
		views = append(views, models.NotificationView{Notification: n, Actor: actor})
	}
	return views, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.notifications.UnreadCount(ctx, recipientID)
}

// MarkRead marks one notification read. Notifications of other accounts are
// reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	ok, err := s.notifications.MarkRead(ctx, id, recipientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, recipientID)
}
