package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

type DeliverableService struct {
	store store.Store
	files store.FileStore
	log   zerolog.Logger
}

type UploadDeliverableInput struct {
	ProjectID   uuid.UUID
	FileName    string
	Description string
	Content     io.Reader
}

func NewDeliverableService(st store.Store, files store.FileStore, log zerolog.Logger) *DeliverableService {
	return &DeliverableService{store: st, files: files, log: log}
}

// UploadDeliverable stores the bytes first and only then checks the project. Whatever
// fails after that point removes the stored file again, so a rejected upload leaves
// neither a row nor bytes behind.
func (s *DeliverableService) UploadDeliverable(ctx context.Context, principal model.Principal, input UploadDeliverableInput) (*model.Deliverable, error) {
	if !principal.IsFreelancer() {
		return nil, fmt.Errorf("%w: only freelancers can upload deliverables", ErrPermissionDenied)
	}
	name := filepath.Base(strings.TrimSpace(input.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if input.Content == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}

	stored, err := s.files.Save(ctx, name, input.Content)
	if err != nil {
		return nil, storeError(err, "file")
	}

	var deliverable model.Deliverable
	err = s.store.InTx(ctx, func(tx store.Store) error {
		project, err := tx.Projects().GetForUpdate(ctx, input.ProjectID)
		if err != nil {
			return storeError(err, "project")
		}
		next, err := uploadRule(principal, *project)
		if err != nil {
			return err
		}

		deliverable = model.Deliverable{
			ProjectID:        project.ID,
			FreelancerID:     principal.UserID,
			FileLocation:     stored.Location,
			OriginalFileName: name,
			SizeBytes:        stored.SizeBytes,
			Checksum:         stored.Checksum,
		}
		if desc := strings.TrimSpace(input.Description); desc != "" {
			deliverable.Description = &desc
		}
		if err := tx.Deliverables().Create(ctx, &deliverable); err != nil {
			return err
		}
		if next != nil {
			if err := tx.Projects().Transition(ctx, project.ID, next.from, next.change); err != nil {
				return storeError(err, "project")
			}
		}
		return nil
	})
	if err != nil {
		if delErr := s.files.Delete(context.WithoutCancel(ctx), stored.Location); delErr != nil {
			s.log.Error().Err(delErr).Str("location", stored.Location).Msg("remove rejected upload")
		}
		return nil, err
	}

	s.log.Info().
		Str("project_id", deliverable.ProjectID.String()).
		Str("deliverable_id", deliverable.ID.String()).
		Int64("size_bytes", deliverable.SizeBytes).
		Msg("deliverable uploaded")
	return &deliverable, nil
}

func (s *DeliverableService) ListDeliverables(ctx context.Context, principal model.Principal, projectID uuid.UUID) ([]model.Deliverable, error) {
	project, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if !canAccessDeliverables(principal, *project) {
		return nil, fmt.Errorf("%w: you are neither the client nor the assigned freelancer", ErrPermissionDenied)
	}
	return s.store.Deliverables().ListByProject(ctx, projectID)
}

// OpenDeliverable returns the deliverable and its content. The caller closes the reader.
func (s *DeliverableService) OpenDeliverable(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Deliverable, io.ReadCloser, error) {
	deliverable, err := s.store.Deliverables().Get(ctx, id)
	if err != nil {
		return nil, nil, storeError(err, "deliverable")
	}
	project, err := s.store.Projects().Get(ctx, deliverable.ProjectID)
	if err != nil {
		return nil, nil, storeError(err, "project")
	}
	if !canAccessDeliverables(principal, *project) {
		return nil, nil, fmt.Errorf("%w: not allowed to download this deliverable", ErrPermissionDenied)
	}

	content, err := s.files.Open(ctx, deliverable.FileLocation)
	if err != nil {
		return nil, nil, storeError(err, "deliverable file")
	}
	return deliverable, content, nil
}
