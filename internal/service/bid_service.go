package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

// Emitter delivers notification events after the owning transaction has committed.
// Delivery is best effort and never reports back to the caller.
type Emitter interface {
	Emit(events ...model.NotificationEvent)
}

type BidService struct {
	store  store.Store
	events Emitter
	log    zerolog.Logger
}

type SubmitBidInput struct {
	ProjectID    uuid.UUID
	Amount       float64 `validate:"gt=0"`
	Proposal     string  `validate:"required"`
	DeliveryDays int     `validate:"gt=0"`
}

func NewBidService(st store.Store, events Emitter, log zerolog.Logger) *BidService {
	return &BidService{store: st, events: events, log: log}
}

func (s *BidService) SubmitBid(ctx context.Context, principal model.Principal, input SubmitBidInput) (*model.Bid, error) {
	if !principal.IsFreelancer() {
		return nil, fmt.Errorf("%w: only freelancers can submit bids", ErrPermissionDenied)
	}
	input.Proposal = strings.TrimSpace(input.Proposal)

	var (
		bid    model.Bid
		events []model.NotificationEvent
	)
	err := s.store.InTx(ctx, func(tx store.Store) error {
		project, err := tx.Projects().GetForUpdate(ctx, input.ProjectID)
		if err != nil {
			return storeError(err, "project")
		}

		existing, err := tx.Bids().FindByProjectAndFreelancer(ctx, project.ID, principal.UserID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			existing = nil
		case err != nil:
			return err
		}
		if err := submitBidRule(*project, existing, input); err != nil {
			return err
		}

		bid = model.Bid{
			ProjectID:    project.ID,
			FreelancerID: principal.UserID,
			Amount:       input.Amount,
			Proposal:     input.Proposal,
			DeliveryDays: input.DeliveryDays,
			Status:       model.BidStatusPending,
		}
		if err := tx.Bids().Create(ctx, &bid); err != nil {
			return storeError(err, "bid")
		}
		events = newBidEvents(*project, bid)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(events...)
	return &bid, nil
}

func (s *BidService) ListBidsForProject(ctx context.Context, principal model.Principal, projectID uuid.UUID) ([]model.Bid, error) {
	project, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if !principal.IsAdmin() {
		if err := requireOwner(principal, *project); err != nil {
			return nil, err
		}
	}
	return s.store.Bids().ListByProject(ctx, projectID)
}

func (s *BidService) ListMyBids(ctx context.Context, principal model.Principal) ([]model.FreelancerBid, error) {
	if !principal.IsFreelancer() {
		return nil, fmt.Errorf("%w: only freelancers have bids", ErrPermissionDenied)
	}
	return s.store.Bids().ListByFreelancer(ctx, principal.UserID)
}

func (s *BidService) GetMyBidForProject(ctx context.Context, principal model.Principal, projectID uuid.UUID) (*model.Bid, error) {
	if !principal.IsFreelancer() {
		return nil, fmt.Errorf("%w: only freelancers have bids", ErrPermissionDenied)
	}
	bid, err := s.store.Bids().FindByProjectAndFreelancer(ctx, projectID, principal.UserID)
	if err != nil {
		return nil, storeError(err, "bid")
	}
	return bid, nil
}

// AcceptBid accepts one pending bid, rejects every other pending bid of the project and
// assigns the project to the winner, all in one transaction. The project row is locked
// before the bid so concurrent acceptances on the same project are serialized; losers
// observe the committed state and fail with ErrInvalidState.
func (s *BidService) AcceptBid(ctx context.Context, principal model.Principal, bidID uuid.UUID) error {
	if !principal.IsClient() {
		return fmt.Errorf("%w: only clients can accept bids", ErrPermissionDenied)
	}

	var events []model.NotificationEvent
	err := s.store.InTx(ctx, func(tx store.Store) error {
		bid, err := tx.Bids().Get(ctx, bidID)
		if err != nil {
			return storeError(err, "bid")
		}
		project, err := tx.Projects().GetForUpdate(ctx, bid.ProjectID)
		if err != nil {
			return storeError(err, "project")
		}
		bid, err = tx.Bids().GetForUpdate(ctx, bidID)
		if err != nil {
			return storeError(err, "bid")
		}
		pending, err := tx.Bids().ListPending(ctx, project.ID)
		if err != nil {
			return err
		}

		outcome, err := acceptBidRule(principal, *project, *bid, pending)
		if err != nil {
			return err
		}

		if err := tx.Bids().SetStatus(ctx, bid.ID, model.BidStatusPending, model.BidStatusAccepted); err != nil {
			return storeError(err, "bid")
		}
		rejected, err := tx.Bids().RejectPending(ctx, project.ID, bid.ID)
		if err != nil {
			return err
		}
		if rejected != int64(len(outcome.rejected)) {
			return fmt.Errorf("%w: competing bids changed concurrently", ErrInvalidState)
		}
		if err := tx.Projects().Transition(ctx, project.ID, outcome.from, outcome.change); err != nil {
			return storeError(err, "project")
		}

		events = outcome.events
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("bid_id", bidID.String()).
		Int("rejected", len(events)-1).
		Msg("bid accepted")
	s.events.Emit(events...)
	return nil
}

func (s *BidService) RejectBid(ctx context.Context, principal model.Principal, bidID uuid.UUID) error {
	if !principal.IsClient() {
		return fmt.Errorf("%w: only clients can reject bids", ErrPermissionDenied)
	}

	var events []model.NotificationEvent
	err := s.store.InTx(ctx, func(tx store.Store) error {
		bid, err := tx.Bids().Get(ctx, bidID)
		if err != nil {
			return storeError(err, "bid")
		}
		// Same lock order as AcceptBid: project row first, then the bid.
		project, err := tx.Projects().GetForUpdate(ctx, bid.ProjectID)
		if err != nil {
			return storeError(err, "project")
		}
		bid, err = tx.Bids().GetForUpdate(ctx, bidID)
		if err != nil {
			return storeError(err, "bid")
		}
		events, err = rejectBidRule(principal, *project, *bid)
		if err != nil {
			return err
		}
		return storeError(tx.Bids().SetStatus(ctx, bid.ID, model.BidStatusPending, model.BidStatusRejected), "bid")
	})
	if err != nil {
		return err
	}

	s.events.Emit(events...)
	return nil
}
