package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

type bidStore struct {
	s *Store
}

func (r *bidStore) Create(ctx context.Context, bid *model.Bid) error {
	data, unlock := r.s.lock()
	defer unlock()

	for _, existing := range data.bids {
		if existing.ProjectID == bid.ProjectID && existing.FreelancerID == bid.FreelancerID {
			return store.ErrDuplicate
		}
	}
	if _, ok := data.projects[bid.ProjectID]; !ok {
		return store.ErrNotFound
	}
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}
	now := r.s.now()
	bid.CreatedAt = now
	bid.UpdatedAt = now
	data.bids[bid.ID] = *bid
	return nil
}

func (r *bidStore) Get(ctx context.Context, id uuid.UUID) (*model.Bid, error) {
	data, unlock := r.s.lock()
	defer unlock()

	b, ok := data.bids[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (r *bidStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Bid, error) {
	return r.Get(ctx, id)
}

func (r *bidStore) FindByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*model.Bid, error) {
	data, unlock := r.s.lock()
	defer unlock()

	for _, b := range data.bids {
		if b.ProjectID == projectID && b.FreelancerID == freelancerID {
			found := b
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *bidStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Bid, error) {
	data, unlock := r.s.lock()
	defer unlock()

	return filterBids(data, func(b model.Bid) bool { return b.ProjectID == projectID }), nil
}

func (r *bidStore) ListPending(ctx context.Context, projectID uuid.UUID) ([]model.Bid, error) {
	data, unlock := r.s.lock()
	defer unlock()

	return filterBids(data, func(b model.Bid) bool {
		return b.ProjectID == projectID && b.Status == model.BidStatusPending
	}), nil
}

func (r *bidStore) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]model.FreelancerBid, error) {
	data, unlock := r.s.lock()
	defer unlock()

	bids := filterBids(data, func(b model.Bid) bool { return b.FreelancerID == freelancerID })
	result := make([]model.FreelancerBid, 0, len(bids))
	for _, b := range bids {
		p := data.projects[b.ProjectID]
		result = append(result, model.FreelancerBid{Bid: b, ProjectTitle: p.Title, ProjectStatus: p.Status})
	}
	return result, nil
}

func (r *bidStore) SetStatus(ctx context.Context, id uuid.UUID, from, to model.BidStatus) error {
	data, unlock := r.s.lock()
	defer unlock()

	b, ok := data.bids[id]
	if !ok {
		return store.ErrNotFound
	}
	if b.Status != from {
		return store.ErrStale
	}
	b.Status = to
	b.UpdatedAt = r.s.now()
	data.bids[id] = b
	return nil
}

func (r *bidStore) RejectPending(ctx context.Context, projectID, keepID uuid.UUID) (int64, error) {
	data, unlock := r.s.lock()
	defer unlock()

	var affected int64
	now := r.s.now()
	for id, b := range data.bids {
		if b.ProjectID != projectID || id == keepID || b.Status != model.BidStatusPending {
			continue
		}
		b.Status = model.BidStatusRejected
		b.UpdatedAt = now
		data.bids[id] = b
		affected++
	}
	return affected, nil
}

func filterBids(data *dataset, keep func(model.Bid) bool) []model.Bid {
	result := make([]model.Bid, 0)
	for _, b := range data.bids {
		if keep(b) {
			result = append(result, b)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

type deliverableStore struct {
	s *Store
}

func (r *deliverableStore) Create(ctx context.Context, deliverable *model.Deliverable) error {
	data, unlock := r.s.lock()
	defer unlock()

	if _, ok := data.projects[deliverable.ProjectID]; !ok {
		return store.ErrNotFound
	}
	if deliverable.ID == uuid.Nil {
		deliverable.ID = uuid.New()
	}
	deliverable.UploadedAt = r.s.now()
	data.deliverables[deliverable.ID] = *deliverable
	return nil
}

func (r *deliverableStore) Get(ctx context.Context, id uuid.UUID) (*model.Deliverable, error) {
	data, unlock := r.s.lock()
	defer unlock()

	d, ok := data.deliverables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (r *deliverableStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Deliverable, error) {
	data, unlock := r.s.lock()
	defer unlock()

	result := make([]model.Deliverable, 0)
	for _, d := range data.deliverables {
		if d.ProjectID == projectID {
			result = append(result, d)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result, nil
}
