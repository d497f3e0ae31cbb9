package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/freelancehub/internal/filestore"
	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/repository/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []model.NotificationEvent
}

func (r *recorder) Emit(events ...model.NotificationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recorder) ofType(t model.NotificationType) []model.NotificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.NotificationEvent
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type env struct {
	store        *memory.Store
	users        *memory.Users
	files        *filestore.Local
	uploadDir    string
	events       *recorder
	projects     *ProjectService
	bids         *BidService
	deliverables *DeliverableService
	client       model.Principal
	f1           model.Principal
	f2           model.Principal
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dir := t.TempDir()
	files, err := filestore.NewLocal(dir, 1<<20)
	require.NoError(t, err)

	e := &env{
		store:     memory.NewStore(),
		files:     files,
		uploadDir: dir,
		events:    &recorder{},
		client:    model.Principal{UserID: uuid.New(), Role: model.UserRoleClient},
		f1:        model.Principal{UserID: uuid.New(), Role: model.UserRoleFreelancer},
		f2:        model.Principal{UserID: uuid.New(), Role: model.UserRoleFreelancer},
	}
	e.users = memory.NewUsers(
		model.User{ID: e.client.UserID, Username: "acme", Email: "ops@acme.test", Role: model.UserRoleClient},
		model.User{ID: e.f1.UserID, Username: "alice", Email: "alice@example.test", Role: model.UserRoleFreelancer},
		model.User{ID: e.f2.UserID, Username: "bob", Email: "bob@example.test", Role: model.UserRoleFreelancer},
	)

	log := zerolog.Nop()
	e.projects = NewProjectService(e.store, e.users, e.events, log)
	e.bids = NewBidService(e.store, e.events, log)
	e.deliverables = NewDeliverableService(e.store, files, log)
	return e
}

func projectInput() ProjectInput {
	return ProjectInput{
		Title:          "Landing page",
		Description:    "Marketing site for the spring launch",
		Budget:         500,
		Deadline:       time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second),
		Category:       "web",
		SkillsRequired: []string{"html", "css"},
	}
}

func (e *env) createProject(t *testing.T) *model.Project {
	t.Helper()
	project, err := e.projects.CreateProject(context.Background(), e.client, projectInput())
	require.NoError(t, err)
	return project
}

func (e *env) bid(t *testing.T, who model.Principal, projectID uuid.UUID, amount float64) *model.Bid {
	t.Helper()
	bid, err := e.bids.SubmitBid(context.Background(), who, SubmitBidInput{
		ProjectID:    projectID,
		Amount:       amount,
		Proposal:     "I can do it",
		DeliveryDays: 10,
	})
	require.NoError(t, err)
	return bid
}

// assignedProject returns a project with f1's bid accepted and f2's bid rejected.
func (e *env) assignedProject(t *testing.T) (*model.Project, *model.Bid, *model.Bid) {
	t.Helper()
	project := e.createProject(t)
	b1 := e.bid(t, e.f1, project.ID, 400)
	b2 := e.bid(t, e.f2, project.ID, 450)
	require.NoError(t, e.bids.AcceptBid(context.Background(), e.client, b1.ID))
	return project, b1, b2
}

func (e *env) upload(who model.Principal, projectID uuid.UUID, name, content string) (*model.Deliverable, error) {
	return e.deliverables.UploadDeliverable(context.Background(), who, UploadDeliverableInput{
		ProjectID:   projectID,
		FileName:    name,
		Description: "first draft",
		Content:     bytes.NewBufferString(content),
	})
}

func (e *env) project(t *testing.T, id uuid.UUID) model.Project {
	t.Helper()
	p, err := e.store.Projects().Get(context.Background(), id)
	require.NoError(t, err)
	return *p
}

func (e *env) bidStatus(t *testing.T, id uuid.UUID) model.BidStatus {
	t.Helper()
	b, err := e.store.Bids().Get(context.Background(), id)
	require.NoError(t, err)
	return b.Status
}
