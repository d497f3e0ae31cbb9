package store

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freelancehub/internal/model"
)

var (
	ErrNotFound  = gorm.ErrRecordNotFound
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale is returned by conditional writes whose expected current state no longer holds.
	ErrStale    = errors.New("stale state")
	ErrTooLarge = errors.New("file too large")
)

// Store is the transactional persistence boundary of projects, bids and deliverables.
// The Store handed to an InTx callback is bound to that transaction; row locks taken
// through it are held until the callback returns.
type Store interface {
	Projects() ProjectStore
	Bids() BidStore
	Deliverables() DeliverableStore
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	// GetForUpdate locks the project row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListOpen(ctx context.Context) ([]model.Project, error)
	ListRecentForFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]model.Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.ClientProject, error)
	ListAssignedTo(ctx context.Context, freelancerID uuid.UUID) ([]model.Project, error)
	// UpdateDetails rewrites editable fields while the project is still open.
	UpdateDetails(ctx context.Context, id uuid.UUID, details model.ProjectDetails) error
	// DeleteOpen removes a project that is still open.
	DeleteOpen(ctx context.Context, id uuid.UUID) error
	// Transition moves the project to change.To if its current status is one of from.
	Transition(ctx context.Context, id uuid.UUID, from []model.ProjectStatus, change model.ProjectChange) error
}

type BidStore interface {
	Create(ctx context.Context, bid *model.Bid) error
	Get(ctx context.Context, id uuid.UUID) (*model.Bid, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Bid, error)
	FindByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*model.Bid, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Bid, error)
	ListPending(ctx context.Context, projectID uuid.UUID) ([]model.Bid, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]model.FreelancerBid, error)
	// SetStatus moves a bid from one status to another, failing with ErrStale when it is no longer in from.
	SetStatus(ctx context.Context, id uuid.UUID, from, to model.BidStatus) error
	// RejectPending rejects every pending bid of the project except keepID.
	RejectPending(ctx context.Context, projectID, keepID uuid.UUID) (int64, error)
}

type DeliverableStore interface {
	Create(ctx context.Context, deliverable *model.Deliverable) error
	Get(ctx context.Context, id uuid.UUID) (*model.Deliverable, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Deliverable, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type UserDirectory interface {
	ListFreelancerIDs(ctx context.Context) ([]uuid.UUID, error)
	GetUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error)
}

// FileStore keeps uploaded bytes behind an opaque location handle.
type FileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (model.StoredFile, error)
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	Delete(ctx context.Context, location string) error
}
