package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationNewBid              NotificationType = "new_bid"
	NotificationBidAccepted         NotificationType = "bid_accepted"
	NotificationBidRejected         NotificationType = "bid_rejected"
	NotificationProjectReviewNeeded NotificationType = "project_review_needed"
	NotificationProjectApproved     NotificationType = "project_approved"
	NotificationNewProject          NotificationType = "new_project"
	NotificationRevisionsRequested  NotificationType = "revisions_requested"
)

// NotificationEvent is produced by a lifecycle transition and delivered after commit.
type NotificationEvent struct {
	RecipientID uuid.UUID
	Message     string
	Type        NotificationType
	ProjectID   uuid.UUID
	BidID       *uuid.UUID
}

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	ProjectID *uuid.UUID       `json:"project_id,omitempty"`
	BidID     *uuid.UUID       `json:"bid_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}
