package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

const recentProjectsLimit = 5

type ProjectService struct {
	store  store.Store
	users  store.UserDirectory
	events Emitter
	log    zerolog.Logger
}

type ProjectInput struct {
	Title          string           `validate:"required,max=255"`
	Description    string           `validate:"required"`
	Budget         float64          `validate:"gt=0"`
	Deadline       time.Time        `validate:"required"`
	Category       string           `validate:"required,max=100"`
	Visibility     model.Visibility `validate:"oneof=public private"`
	SkillsRequired []string         `validate:"min=1,dive,required"`
	AttachedFiles  []string         `validate:"dive,required"`
}

func (in *ProjectInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Visibility == "" {
		in.Visibility = model.VisibilityPublic
	}
	skills := make([]string, 0, len(in.SkillsRequired))
	for _, skill := range in.SkillsRequired {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	in.SkillsRequired = skills
}

func NewProjectService(st store.Store, users store.UserDirectory, events Emitter, log zerolog.Logger) *ProjectService {
	return &ProjectService{store: st, users: users, events: events, log: log}
}

func (s *ProjectService) CreateProject(ctx context.Context, principal model.Principal, input ProjectInput) (*model.Project, error) {
	if !principal.IsClient() {
		return nil, fmt.Errorf("%w: only clients can post projects", ErrPermissionDenied)
	}
	input.normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	project := model.Project{
		ClientID:       principal.UserID,
		Title:          input.Title,
		Description:    input.Description,
		Budget:         input.Budget,
		Deadline:       input.Deadline,
		Category:       input.Category,
		Visibility:     input.Visibility,
		SkillsRequired: model.StringList(input.SkillsRequired),
		AttachedFiles:  model.StringList(input.AttachedFiles),
		Status:         model.ProjectStatusOpen,
	}
	if project.AttachedFiles == nil {
		project.AttachedFiles = model.StringList{}
	}
	if err := s.store.Projects().Create(ctx, &project); err != nil {
		return nil, err
	}

	freelancers, err := s.users.ListFreelancerIDs(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("project_id", project.ID.String()).Msg("list freelancers for new project notification")
	} else {
		s.events.Emit(newProjectEvents(project, freelancers)...)
	}
	return &project, nil
}

func (s *ProjectService) ListOpenProjects(ctx context.Context, principal model.Principal) ([]model.Project, error) {
	projects, err := s.store.Projects().ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	visible := projects[:0]
	for _, p := range projects {
		if canViewProject(principal, p) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *ProjectService) ListRecentForFreelancer(ctx context.Context, principal model.Principal) ([]model.Project, error) {
	if !principal.IsFreelancer() {
		return nil, fmt.Errorf("%w: only freelancers have a project feed", ErrPermissionDenied)
	}
	projects, err := s.store.Projects().ListRecentForFreelancer(ctx, principal.UserID, recentProjectsLimit*2)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Project, 0, recentProjectsLimit)
	for _, p := range projects {
		if len(visible) == recentProjectsLimit {
			break
		}
		if canViewProject(principal, p) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *ProjectService) ListMyProjects(ctx context.Context, principal model.Principal) ([]model.ClientProject, error) {
	if !principal.IsClient() {
		return nil, fmt.Errorf("%w: only clients own projects", ErrPermissionDenied)
	}
	return s.store.Projects().ListByClient(ctx, principal.UserID)
}

func (s *ProjectService) ListAssignedToMe(ctx context.Context, principal model.Principal) ([]model.Project, error) {
	if !principal.IsFreelancer() {
		return nil, fmt.Errorf("%w: only freelancers are assigned projects", ErrPermissionDenied)
	}
	return s.store.Projects().ListAssignedTo(ctx, principal.UserID)
}

func (s *ProjectService) GetProject(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Project, error) {
	project, err := s.store.Projects().Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "project")
	}
	if !canViewProject(principal, *project) {
		if project.Visibility == model.VisibilityPrivate {
			return nil, fmt.Errorf("%w: this is a private project", ErrPermissionDenied)
		}
		return nil, fmt.Errorf("%w: this project is no longer open", ErrPermissionDenied)
	}
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, principal model.Principal, id uuid.UUID, input ProjectInput) (*model.Project, error) {
	input.normalize()

	var updated *model.Project
	err := s.store.InTx(ctx, func(tx store.Store) error {
		project, err := tx.Projects().GetForUpdate(ctx, id)
		if err != nil {
			return storeError(err, "project")
		}
		if err := requireOwner(principal, *project); err != nil {
			return err
		}
		if project.Status != model.ProjectStatusOpen {
			return fmt.Errorf("%w: project cannot be edited, it is already '%s'", ErrInvalidState, project.Status)
		}
		if err := validateInput(input); err != nil {
			return err
		}
		details := model.ProjectDetails{
			Title:          input.Title,
			Description:    input.Description,
			Budget:         input.Budget,
			Deadline:       input.Deadline,
			Category:       input.Category,
			Visibility:     input.Visibility,
			SkillsRequired: model.StringList(input.SkillsRequired),
		}
		if err := tx.Projects().UpdateDetails(ctx, id, details); err != nil {
			return storeError(err, "project")
		}
		updated, err = tx.Projects().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	return s.store.InTx(ctx, func(tx store.Store) error {
		project, err := tx.Projects().GetForUpdate(ctx, id)
		if err != nil {
			return storeError(err, "project")
		}
		if err := requireOwner(principal, *project); err != nil {
			return err
		}
		if project.Status != model.ProjectStatusOpen {
			return fmt.Errorf("%w: project cannot be deleted, it is already '%s'", ErrInvalidState, project.Status)
		}
		return storeError(tx.Projects().DeleteOpen(ctx, id), "project")
	})
}
