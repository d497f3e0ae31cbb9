package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/nurpe/freelancehub/internal/config"
	"github.com/nurpe/freelancehub/internal/db"
	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/repository"
	"github.com/nurpe/freelancehub/internal/service"
	"github.com/nurpe/freelancehub/internal/store"
)

type noopEmitter struct{}

func (noopEmitter) Emit(...model.NotificationEvent) {}

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("freelancehub"),
		postgres.WithUsername("freelancehub"),
		postgres.WithPassword("secret"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := &config.Config{
		Environment: "test",
		DB: config.DBConfig{
			DSN:             dsn,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Minute,
			AutoMigrate:     true,
		},
	}
	database, err := db.New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	// Migrations are idempotent.
	require.NoError(t, db.Migrate(database))
	return database
}

func insertUser(t *testing.T, database *gorm.DB, role model.UserRole) model.Principal {
	t.Helper()
	id := uuid.New()
	err := database.Exec(`INSERT INTO users (id, username, email, role) VALUES (?, ?, ?, ?)`,
		id, "user-"+id.String()[:8], id.String()+"@example.test", role).Error
	require.NoError(t, err)
	return model.Principal{UserID: id, Role: role}
}

func TestPostgresStore(t *testing.T) {
	database := startPostgres(t)
	ctx := context.Background()
	st := repository.NewStore(database)
	users := repository.NewUserRepository(database)
	log := zerolog.Nop()

	client := insertUser(t, database, model.UserRoleClient)
	f1 := insertUser(t, database, model.UserRoleFreelancer)
	f2 := insertUser(t, database, model.UserRoleFreelancer)

	projects := service.NewProjectService(st, users, noopEmitter{}, log)
	bids := service.NewBidService(st, noopEmitter{}, log)

	project, err := projects.CreateProject(ctx, client, service.ProjectInput{
		Title:          "Data pipeline",
		Description:    "Nightly ETL",
		Budget:         1200,
		Deadline:       time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		Category:       "data",
		SkillsRequired: []string{"go", "sql"},
	})
	require.NoError(t, err)

	stored, err := st.Projects().Get(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, model.StringList{"go", "sql"}, stored.SkillsRequired)
	require.Equal(t, model.StringList{}, stored.AttachedFiles)
	require.Equal(t, model.ProjectStatusOpen, stored.Status)

	freelancers, err := users.ListFreelancerIDs(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{f1.UserID, f2.UserID}, freelancers)

	t.Run("duplicate bid", func(t *testing.T) {
		dup := &model.Bid{ProjectID: project.ID, FreelancerID: f1.UserID, Amount: 10, Proposal: "x", DeliveryDays: 1, Status: model.BidStatusPending}
		require.NoError(t, st.Bids().Create(ctx, dup))
		again := &model.Bid{ProjectID: project.ID, FreelancerID: f1.UserID, Amount: 11, Proposal: "y", DeliveryDays: 1, Status: model.BidStatusPending}
		require.ErrorIs(t, st.Bids().Create(ctx, again), store.ErrDuplicate)

		_, err := bids.SubmitBid(ctx, f1, service.SubmitBidInput{ProjectID: project.ID, Amount: 12, Proposal: "z", DeliveryDays: 2})
		require.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("stale transition", func(t *testing.T) {
		err := st.Projects().Transition(ctx, project.ID, []model.ProjectStatus{model.ProjectStatusInProgress}, model.ProjectChange{To: model.ProjectStatusCompleted})
		require.ErrorIs(t, err, store.ErrStale)
		err = st.Projects().Transition(ctx, uuid.New(), []model.ProjectStatus{model.ProjectStatusOpen}, model.ProjectChange{To: model.ProjectStatusAssigned})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("concurrent accept has one winner", func(t *testing.T) {
		var candidates []uuid.UUID
		for i := 0; i < 5; i++ {
			f := insertUser(t, database, model.UserRoleFreelancer)
			b, err := bids.SubmitBid(ctx, f, service.SubmitBidInput{ProjectID: project.ID, Amount: float64(500 + i), Proposal: "bid", DeliveryDays: 5})
			require.NoError(t, err)
			candidates = append(candidates, b.ID)
		}

		var wg sync.WaitGroup
		errs := make([]error, len(candidates))
		for i, id := range candidates {
			wg.Add(1)
			go func(i int, id uuid.UUID) {
				defer wg.Done()
				errs[i] = bids.AcceptBid(ctx, client, id)
			}(i, id)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
				continue
			}
			require.ErrorIs(t, err, service.ErrInvalidState)
		}
		require.Equal(t, 1, winners)

		var accepted int64
		require.NoError(t, database.Raw(`SELECT COUNT(*) FROM bids WHERE project_id = ? AND status = 'accepted'`, project.ID).Scan(&accepted).Error)
		require.Equal(t, int64(1), accepted)
		var pending int64
		require.NoError(t, database.Raw(`SELECT COUNT(*) FROM bids WHERE project_id = ? AND status = 'pending'`, project.ID).Scan(&pending).Error)
		require.Zero(t, pending)

		got, err := st.Projects().Get(ctx, project.ID)
		require.NoError(t, err)
		require.Equal(t, model.ProjectStatusAssigned, got.Status)
		require.NotNil(t, got.AssignedFreelancerID)
	})
}

func TestPostgresNotificationsAndDeliverables(t *testing.T) {
	database := startPostgres(t)
	ctx := context.Background()
	st := repository.NewStore(database)
	notifications := repository.NewNotificationRepository(database)

	client := insertUser(t, database, model.UserRoleClient)
	freelancer := insertUser(t, database, model.UserRoleFreelancer)

	project := &model.Project{
		ClientID:       client.UserID,
		Title:          "Mobile app",
		Description:    "iOS and Android",
		Budget:         3000,
		Deadline:       time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		Category:       "mobile",
		Visibility:     model.VisibilityPrivate,
		SkillsRequired: model.StringList{"swift"},
		AttachedFiles:  model.StringList{},
		Status:         model.ProjectStatusOpen,
	}
	require.NoError(t, st.Projects().Create(ctx, project))
	require.NotEqual(t, uuid.Nil, project.ID)

	desc := "first cut"
	deliverable := &model.Deliverable{
		ProjectID:        project.ID,
		FreelancerID:     freelancer.UserID,
		FileLocation:     uuid.NewString() + ".zip",
		OriginalFileName: "build.zip",
		Description:      &desc,
		SizeBytes:        42,
		Checksum:         "abc",
	}
	require.NoError(t, st.Deliverables().Create(ctx, deliverable))
	list, err := st.Deliverables().ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "first cut", *list[0].Description)

	n := &model.Notification{UserID: client.UserID, Message: "review needed", Type: model.NotificationProjectReviewNeeded, ProjectID: &project.ID}
	require.NoError(t, notifications.Create(ctx, n))
	count, err := notifications.CountUnread(ctx, client.UserID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	updated, err := notifications.MarkRead(ctx, freelancer.UserID, []uuid.UUID{n.ID})
	require.NoError(t, err)
	require.Zero(t, updated)
	updated, err = notifications.MarkRead(ctx, client.UserID, []uuid.UUID{n.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), updated)

	items, err := notifications.ListByUser(ctx, client.UserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].IsRead)
	require.NotNil(t, items[0].ReadAt)
}
