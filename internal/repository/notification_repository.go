package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freelancehub/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	var saved model.Notification
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO notifications (user_id, message, type, project_id, bid_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, user_id, message, type, project_id, bid_id, is_read, created_at, read_at
	`,
		notification.UserID,
		notification.Message,
		notification.Type,
		notification.ProjectID,
		notification.BidID,
	).Scan(&saved).Error
	if err != nil {
		return err
	}
	*notification = saved
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, user_id, message, type, project_id, bid_id, is_read, created_at, read_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID).Scan(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE
	`, userID).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Exec(`
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE id IN ? AND user_id = ? AND is_read = FALSE
	`, ids, userID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
