package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

func (s *ProjectService) MarkForReview(ctx context.Context, principal model.Principal, projectID uuid.UUID) error {
	var events []model.NotificationEvent
	err := s.store.InTx(ctx, func(tx store.Store) error {
		project, err := tx.Projects().GetForUpdate(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		t, err := markForReviewRule(principal, *project)
		if err != nil {
			return err
		}
		if err := tx.Projects().Transition(ctx, project.ID, t.from, t.change); err != nil {
			return storeError(err, "project")
		}
		events = t.events
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Emit(events...)
	return nil
}

// ApproveProject completes the project and the accepted bid of its freelancer together.
// Payment release is only recorded in the log.
func (s *ProjectService) ApproveProject(ctx context.Context, principal model.Principal, projectID uuid.UUID) error {
	var (
		events   []model.NotificationEvent
		accepted *model.Bid
	)
	err := s.store.InTx(ctx, func(tx store.Store) error {
		project, err := tx.Projects().GetForUpdate(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		t, err := approveRule(principal, *project)
		if err != nil {
			return err
		}
		if err := tx.Projects().Transition(ctx, project.ID, t.from, t.change); err != nil {
			return storeError(err, "project")
		}

		if project.AssignedFreelancerID != nil {
			bid, err := tx.Bids().FindByProjectAndFreelancer(ctx, project.ID, *project.AssignedFreelancerID)
			switch {
			case errors.Is(err, store.ErrNotFound):
			case err != nil:
				return err
			case bid.Status == model.BidStatusAccepted:
				if err := tx.Bids().SetStatus(ctx, bid.ID, model.BidStatusAccepted, model.BidStatusCompleted); err != nil {
					return storeError(err, "bid")
				}
				accepted = bid
			}
		}
		events = t.events
		return nil
	})
	if err != nil {
		return err
	}

	if accepted != nil {
		s.log.Info().
			Str("project_id", projectID.String()).
			Str("freelancer_id", accepted.FreelancerID.String()).
			Float64("amount", accepted.Amount).
			Msg("payment release requested")
	}
	s.events.Emit(events...)
	return nil
}

func (s *ProjectService) RequestRevisions(ctx context.Context, principal model.Principal, projectID uuid.UUID, message string) error {
	var events []model.NotificationEvent
	err := s.store.InTx(ctx, func(tx store.Store) error {
		project, err := tx.Projects().GetForUpdate(ctx, projectID)
		if err != nil {
			return storeError(err, "project")
		}
		t, err := requestRevisionsRule(principal, *project, message)
		if err != nil {
			return err
		}
		if err := tx.Projects().Transition(ctx, project.ID, t.from, t.change); err != nil {
			return storeError(err, "project")
		}
		events = t.events
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Emit(events...)
	return nil
}
