// Package memory is an in-process implementation of the store contracts. Transactions are
// serialized behind one mutex and run against a copy of the data that replaces the live
// data only when the callback succeeds.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

type dataset struct {
	projects     map[uuid.UUID]model.Project
	bids         map[uuid.UUID]model.Bid
	deliverables map[uuid.UUID]model.Deliverable
}

func newDataset() *dataset {
	return &dataset{
		projects:     map[uuid.UUID]model.Project{},
		bids:         map[uuid.UUID]model.Bid{},
		deliverables: map[uuid.UUID]model.Deliverable{},
	}
}

func (d *dataset) clone() *dataset {
	out := newDataset()
	for id, p := range d.projects {
		out.projects[id] = copyProject(p)
	}
	for id, b := range d.bids {
		out.bids[id] = b
	}
	for id, dl := range d.deliverables {
		out.deliverables[id] = dl
	}
	return out
}

type Store struct {
	mu   *sync.Mutex
	root *Store
	data *dataset
	inTx bool
	now  func() time.Time
}

func NewStore() *Store {
	s := &Store{
		mu:   &sync.Mutex{},
		data: newDataset(),
		now:  func() time.Time { return time.Now().UTC() },
	}
	s.root = s
	return s
}

func (s *Store) Projects() store.ProjectStore         { return &projectStore{s: s} }
func (s *Store) Bids() store.BidStore                 { return &bidStore{s: s} }
func (s *Store) Deliverables() store.DeliverableStore { return &deliverableStore{s: s} }

func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, root: s.root, data: s.data.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.root.data = tx.data
	return nil
}

// lock returns the live dataset, taking the mutex unless the caller already runs in a transaction.
func (s *Store) lock() (*dataset, func()) {
	if s.inTx {
		return s.data, func() {}
	}
	s.mu.Lock()
	return s.root.data, s.mu.Unlock
}

func copyProject(p model.Project) model.Project {
	p.SkillsRequired = p.SkillsRequired.Clone()
	p.AttachedFiles = p.AttachedFiles.Clone()
	if p.AssignedFreelancerID != nil {
		id := *p.AssignedFreelancerID
		p.AssignedFreelancerID = &id
	}
	if p.RevisionNotes != nil {
		notes := *p.RevisionNotes
		p.RevisionNotes = &notes
	}
	return p
}

type projectStore struct {
	s *Store
}

func (r *projectStore) Create(ctx context.Context, project *model.Project) error {
	data, unlock := r.s.lock()
	defer unlock()

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := r.s.now()
	project.CreatedAt = now
	project.UpdatedAt = now
	data.projects[project.ID] = copyProject(*project)
	return nil
}

func (r *projectStore) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	data, unlock := r.s.lock()
	defer unlock()

	p, ok := data.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = copyProject(p)
	return &p, nil
}

func (r *projectStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return r.Get(ctx, id)
}

func (r *projectStore) ListOpen(ctx context.Context) ([]model.Project, error) {
	data, unlock := r.s.lock()
	defer unlock()

	return filterProjects(data, func(p model.Project) bool {
		return p.Status == model.ProjectStatusOpen
	}, newestFirst), nil
}

func (r *projectStore) ListRecentForFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]model.Project, error) {
	data, unlock := r.s.lock()
	defer unlock()

	bidOn := map[uuid.UUID]struct{}{}
	for _, b := range data.bids {
		if b.FreelancerID == freelancerID {
			bidOn[b.ProjectID] = struct{}{}
		}
	}
	projects := filterProjects(data, func(p model.Project) bool {
		_, seen := bidOn[p.ID]
		return p.Status == model.ProjectStatusOpen && !seen
	}, newestFirst)
	if limit > 0 && len(projects) > limit {
		projects = projects[:limit]
	}
	return projects, nil
}

func (r *projectStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.ClientProject, error) {
	data, unlock := r.s.lock()
	defer unlock()

	projects := filterProjects(data, func(p model.Project) bool {
		return p.ClientID == clientID
	}, newestFirst)

	counts := map[uuid.UUID]int64{}
	for _, b := range data.bids {
		counts[b.ProjectID]++
	}
	result := make([]model.ClientProject, 0, len(projects))
	for _, p := range projects {
		result = append(result, model.ClientProject{Project: p, BidCount: counts[p.ID]})
	}
	return result, nil
}

func (r *projectStore) ListAssignedTo(ctx context.Context, freelancerID uuid.UUID) ([]model.Project, error) {
	data, unlock := r.s.lock()
	defer unlock()

	return filterProjects(data, func(p model.Project) bool {
		return p.AssignedTo(freelancerID)
	}, func(a, b model.Project) bool {
		return a.Deadline.Before(b.Deadline)
	}), nil
}

func (r *projectStore) UpdateDetails(ctx context.Context, id uuid.UUID, details model.ProjectDetails) error {
	data, unlock := r.s.lock()
	defer unlock()

	p, ok := data.projects[id]
	if !ok {
		return store.ErrNotFound
	}
	if p.Status != model.ProjectStatusOpen {
		return store.ErrStale
	}
	p.Title = details.Title
	p.Description = details.Description
	p.Budget = details.Budget
	p.Deadline = details.Deadline
	p.Category = details.Category
	p.Visibility = details.Visibility
	p.SkillsRequired = details.SkillsRequired.Clone()
	p.UpdatedAt = r.s.now()
	data.projects[id] = p
	return nil
}

func (r *projectStore) DeleteOpen(ctx context.Context, id uuid.UUID) error {
	data, unlock := r.s.lock()
	defer unlock()

	p, ok := data.projects[id]
	if !ok {
		return store.ErrNotFound
	}
	if p.Status != model.ProjectStatusOpen {
		return store.ErrStale
	}
	delete(data.projects, id)
	for bidID, b := range data.bids {
		if b.ProjectID == id {
			delete(data.bids, bidID)
		}
	}
	return nil
}

func (r *projectStore) Transition(ctx context.Context, id uuid.UUID, from []model.ProjectStatus, change model.ProjectChange) error {
	data, unlock := r.s.lock()
	defer unlock()

	p, ok := data.projects[id]
	if !ok {
		return store.ErrNotFound
	}
	if !statusIn(p.Status, from) {
		return store.ErrStale
	}
	p.Status = change.To
	if change.AssignedFreelancerID != nil {
		freelancerID := *change.AssignedFreelancerID
		p.AssignedFreelancerID = &freelancerID
	}
	if change.RevisionNotes != nil {
		notes := *change.RevisionNotes
		p.RevisionNotes = &notes
	}
	p.UpdatedAt = r.s.now()
	data.projects[id] = p
	return nil
}

func statusIn(status model.ProjectStatus, set []model.ProjectStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func newestFirst(a, b model.Project) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

func filterProjects(data *dataset, keep func(model.Project) bool, less func(a, b model.Project) bool) []model.Project {
	result := make([]model.Project, 0)
	for _, p := range data.projects {
		if keep(p) {
			result = append(result, copyProject(p))
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result
}
