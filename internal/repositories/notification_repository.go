package repositories

import (
	"context"

	"github.com/anonto42/murmur/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	Retract(ctx context.Context, kind, actorID, targetID string) (int64, error)
	RetractComment(ctx context.Context, commentID string) (int64, error)
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

type PostgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(notification).Error, "create notification")
}

// Retract deletes the unread notifications of kind that actorID caused on
// targetID, such as the like notification of a since-removed like.
func (r *PostgresNotificationRepository) Retract(ctx context.Context, kind, actorID, targetID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("type = ? AND actor_id = ? AND target_id = ? AND is_read = ?", kind, actorID, targetID, false).
		Delete(&models.Notification{})
	return res.RowsAffected, translate(res.Error, "retract notification")
}

// RetractComment deletes the notification raised by one comment.
func (r *PostgresNotificationRepository) RetractComment(ctx context.Context, commentID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("comment_id = ?", commentID).Delete(&models.Notification{})
	return res.RowsAffected, translate(res.Error, "retract comment notification")
}

func (r *PostgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, translate(err, "list notifications")
}

func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, translate(err, "count unread notifications")
}

// MarkRead reports false when no notification with that id belongs to
// recipientID.
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		UpdateColumn("is_read", true)
	if res.Error != nil {
		return false, translate(res.Error, "mark notification read")
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		UpdateColumn("is_read", true)
	return res.RowsAffected, translate(res.Error, "mark notifications read")
}
