package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

const bidColumns = `
	b.id,
	b.project_id,
	b.freelancer_id,
	b.amount,
	b.proposal,
	b.delivery_days,
	b.status,
	b.created_at,
	b.updated_at
`

type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) Create(ctx context.Context, bid *model.Bid) error {
	var saved model.Bid
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO bids AS b (
			project_id,
			freelancer_id,
			amount,
			proposal,
			delivery_days,
			status
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+bidColumns,
		bid.ProjectID,
		bid.FreelancerID,
		bid.Amount,
		bid.Proposal,
		bid.DeliveryDays,
		bid.Status,
	).Scan(&saved).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bid for project %s by %s", store.ErrDuplicate, bid.ProjectID, bid.FreelancerID)
		}
		return err
	}
	*bid = saved
	return nil
}

func (r *BidRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bid, error) {
	return r.get(ctx, id, "")
}

func (r *BidRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Bid, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *BidRepository) get(ctx context.Context, id uuid.UUID, lock string) (*model.Bid, error) {
	var bid model.Bid
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+bidColumns+`
		FROM bids b
		WHERE b.id = ?
		LIMIT 1`+lock, id).Scan(&bid).Error
	if err != nil {
		return nil, err
	}
	if bid.ID == uuid.Nil {
		return nil, store.ErrNotFound
	}
	return &bid, nil
}

func (r *BidRepository) FindByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*model.Bid, error) {
	var bid model.Bid
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+bidColumns+`
		FROM bids b
		WHERE b.project_id = ? AND b.freelancer_id = ?
		LIMIT 1
	`, projectID, freelancerID).Scan(&bid).Error
	if err != nil {
		return nil, err
	}
	if bid.ID == uuid.Nil {
		return nil, store.ErrNotFound
	}
	return &bid, nil
}

func (r *BidRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+bidColumns+`
		FROM bids b
		WHERE b.project_id = ?
		ORDER BY b.created_at ASC, b.id ASC
	`, projectID).Scan(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *BidRepository) ListPending(ctx context.Context, projectID uuid.UUID) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+bidColumns+`
		FROM bids b
		WHERE b.project_id = ? AND b.status = ?
		ORDER BY b.created_at ASC, b.id ASC
	`, projectID, model.BidStatusPending).Scan(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *BidRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]model.FreelancerBid, error) {
	var bids []model.FreelancerBid
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+bidColumns+`,
			p.title AS project_title,
			p.status AS project_status
		FROM bids b
		JOIN projects p ON p.id = b.project_id
		WHERE b.freelancer_id = ?
		ORDER BY b.created_at DESC
	`, freelancerID).Scan(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *BidRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to model.BidStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE bids
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ?
	`, to, id, from)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("%w: project already has an accepted bid", store.ErrStale)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return store.ErrStale
	}
	return nil
}

func (r *BidRepository) RejectPending(ctx context.Context, projectID, keepID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE bids
		SET status = ?, updated_at = NOW()
		WHERE project_id = ? AND id <> ? AND status = ?
	`, model.BidStatusRejected, projectID, keepID, model.BidStatusPending)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
