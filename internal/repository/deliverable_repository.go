package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

const deliverableColumns = `
	id,
	project_id,
	freelancer_id,
	file_location,
	original_file_name,
	description,
	size_bytes,
	checksum,
	uploaded_at
`

type DeliverableRepository struct {
	db *gorm.DB
}

func NewDeliverableRepository(db *gorm.DB) *DeliverableRepository {
	return &DeliverableRepository{db: db}
}

func (r *DeliverableRepository) Create(ctx context.Context, deliverable *model.Deliverable) error {
	var saved model.Deliverable
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO deliverables (
			project_id,
			freelancer_id,
			file_location,
			original_file_name,
			description,
			size_bytes,
			checksum
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+deliverableColumns,
		deliverable.ProjectID,
		deliverable.FreelancerID,
		deliverable.FileLocation,
		deliverable.OriginalFileName,
		deliverable.Description,
		deliverable.SizeBytes,
		deliverable.Checksum,
	).Scan(&saved).Error
	if err != nil {
		return err
	}
	*deliverable = saved
	return nil
}

func (r *DeliverableRepository) Get(ctx context.Context, id uuid.UUID) (*model.Deliverable, error) {
	var deliverable model.Deliverable
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+deliverableColumns+`
		FROM deliverables
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&deliverable).Error
	if err != nil {
		return nil, err
	}
	if deliverable.ID == uuid.Nil {
		return nil, store.ErrNotFound
	}
	return &deliverable, nil
}

func (r *DeliverableRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Deliverable, error) {
	var deliverables []model.Deliverable
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+deliverableColumns+`
		FROM deliverables
		WHERE project_id = ?
		ORDER BY uploaded_at DESC
	`, projectID).Scan(&deliverables).Error
	if err != nil {
		return nil, err
	}
	return deliverables, nil
}
