package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

const projectColumns = `
	p.id,
	p.client_id,
	p.title,
	p.description,
	p.budget,
	p.deadline,
	p.category,
	p.visibility,
	p.skills_required,
	p.attached_files,
	p.status,
	p.assigned_freelancer_id,
	p.revision_notes,
	p.created_at,
	p.updated_at
`

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	var saved model.Project
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO projects AS p (
			client_id,
			title,
			description,
			budget,
			deadline,
			category,
			visibility,
			skills_required,
			attached_files,
			status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?::jsonb, ?::jsonb, ?)
		RETURNING `+projectColumns,
		project.ClientID,
		project.Title,
		project.Description,
		project.Budget,
		project.Deadline,
		project.Category,
		project.Visibility,
		project.SkillsRequired,
		project.AttachedFiles,
		project.Status,
	).Scan(&saved).Error
	if err != nil {
		return err
	}
	*project = saved
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return r.get(ctx, id, "")
}

func (r *ProjectRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ProjectRepository) get(ctx context.Context, id uuid.UUID, lock string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.id = ?
		LIMIT 1`+lock, id).Scan(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == uuid.Nil {
		return nil, store.ErrNotFound
	}
	return &project, nil
}

func (r *ProjectRepository) ListOpen(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.status = ?
		ORDER BY p.created_at DESC
	`, model.ProjectStatusOpen).Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) ListRecentForFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.status = ?
			AND NOT EXISTS (
				SELECT 1 FROM bids b WHERE b.project_id = p.id AND b.freelancer_id = ?
			)
		ORDER BY p.created_at DESC
		LIMIT ?
	`, model.ProjectStatusOpen, freelancerID, limit).Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.ClientProject, error) {
	var projects []model.ClientProject
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+projectColumns+`,
			(SELECT COUNT(*) FROM bids b WHERE b.project_id = p.id) AS bid_count
		FROM projects p
		WHERE p.client_id = ?
		ORDER BY p.created_at DESC
	`, clientID).Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) ListAssignedTo(ctx context.Context, freelancerID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.assigned_freelancer_id = ?
		ORDER BY p.deadline ASC
	`, freelancerID).Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) UpdateDetails(ctx context.Context, id uuid.UUID, details model.ProjectDetails) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE projects
		SET
			title = ?,
			description = ?,
			budget = ?,
			deadline = ?,
			category = ?,
			visibility = ?,
			skills_required = ?::jsonb,
			updated_at = NOW()
		WHERE id = ? AND status = ?
	`,
		details.Title,
		details.Description,
		details.Budget,
		details.Deadline,
		details.Category,
		details.Visibility,
		details.SkillsRequired,
		id,
		model.ProjectStatusOpen,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, id)
	}
	return nil
}

func (r *ProjectRepository) DeleteOpen(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM projects WHERE id = ? AND status = ?
	`, id, model.ProjectStatusOpen)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, id)
	}
	return nil
}

func (r *ProjectRepository) Transition(ctx context.Context, id uuid.UUID, from []model.ProjectStatus, change model.ProjectChange) error {
	expected := make([]string, len(from))
	for i, status := range from {
		expected[i] = string(status)
	}

	result := r.db.WithContext(ctx).Exec(`
		UPDATE projects
		SET
			status = ?,
			assigned_freelancer_id = COALESCE(?, assigned_freelancer_id),
			revision_notes = COALESCE(?, revision_notes),
			updated_at = NOW()
		WHERE id = ? AND status IN ?
	`, change.To, change.AssignedFreelancerID, change.RevisionNotes, id, expected)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, id)
	}
	return nil
}

func (r *ProjectRepository) missingOrStale(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db.WithContext(ctx).Raw(`
		SELECT EXISTS (SELECT 1 FROM projects WHERE id = ?)
	`, id).Scan(&exists).Error; err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrStale
}
