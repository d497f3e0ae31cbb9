package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

type NotificationService struct {
	notifications store.NotificationStore
}

func NewNotificationService(notifications store.NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, principal model.Principal) ([]model.Notification, error) {
	return s.notifications.ListByUser(ctx, principal.UserID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, principal model.Principal) (int64, error) {
	return s.notifications.CountUnread(ctx, principal.UserID)
}

// MarkRead marks the caller's own unread notifications and reports how many changed.
func (s *NotificationService) MarkRead(ctx context.Context, principal model.Principal, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: notification ids are required", ErrInvalidInput)
	}
	return s.notifications.MarkRead(ctx, principal.UserID, ids)
}
