package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/freelancehub/internal/model"
)

func ruleFixture() (model.Principal, model.Principal, model.Project) {
	client := model.Principal{UserID: uuid.New(), Role: model.UserRoleClient}
	freelancer := model.Principal{UserID: uuid.New(), Role: model.UserRoleFreelancer}
	project := model.Project{
		ID:       uuid.New(),
		ClientID: client.UserID,
		Title:    "Logo",
		Status:   model.ProjectStatusOpen,
	}
	return client, freelancer, project
}

func TestAcceptBidRule(t *testing.T) {
	client, freelancer, project := ruleFixture()
	winner := model.Bid{ID: uuid.New(), ProjectID: project.ID, FreelancerID: freelancer.UserID, Status: model.BidStatusPending}
	loser := model.Bid{ID: uuid.New(), ProjectID: project.ID, FreelancerID: uuid.New(), Status: model.BidStatusPending}
	withdrawn := model.Bid{ID: uuid.New(), ProjectID: project.ID, FreelancerID: uuid.New(), Status: model.BidStatusRejected}

	out, err := acceptBidRule(client, project, winner, []model.Bid{winner, loser, withdrawn})
	require.NoError(t, err)
	require.Equal(t, model.ProjectStatusAssigned, out.change.To)
	require.Equal(t, freelancer.UserID, *out.change.AssignedFreelancerID)
	require.Equal(t, []model.ProjectStatus{model.ProjectStatusOpen}, out.from)
	require.Len(t, out.rejected, 1)
	require.Equal(t, loser.ID, out.rejected[0].ID)
	require.Len(t, out.events, 2)
	require.Equal(t, model.NotificationBidAccepted, out.events[0].Type)
	require.Equal(t, model.NotificationBidRejected, out.events[1].Type)
	require.Equal(t, loser.FreelancerID, out.events[1].RecipientID)

	t.Run("ownership is checked first", func(t *testing.T) {
		stranger := model.Principal{UserID: uuid.New(), Role: model.UserRoleClient}
		assigned := project
		assigned.Status = model.ProjectStatusAssigned
		_, err := acceptBidRule(stranger, assigned, winner, nil)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("bid not pending", func(t *testing.T) {
		_, err := acceptBidRule(client, project, withdrawn, nil)
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("project not open", func(t *testing.T) {
		assigned := project
		assigned.Status = model.ProjectStatusAssigned
		_, err := acceptBidRule(client, assigned, winner, nil)
		require.ErrorIs(t, err, ErrInvalidState)
		require.Contains(t, err.Error(), "assigned")
	})
}

func TestUploadRule(t *testing.T) {
	_, freelancer, project := ruleFixture()
	project.AssignedFreelancerID = &freelancer.UserID

	cases := []struct {
		status model.ProjectStatus
		next   *model.ProjectStatus
		err    error
	}{
		{status: model.ProjectStatusOpen, err: ErrInvalidState},
		{status: model.ProjectStatusAssigned, next: ptr(model.ProjectStatusInProgress)},
		{status: model.ProjectStatusInProgress},
		{status: model.ProjectStatusCompletedPendingReview, err: ErrInvalidState},
		{status: model.ProjectStatusCompleted, err: ErrInvalidState},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			p := project
			p.Status = tc.status
			next, err := uploadRule(freelancer, p)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			if tc.next == nil {
				require.Nil(t, next)
				return
			}
			require.NotNil(t, next)
			require.Equal(t, *tc.next, next.change.To)
			require.Empty(t, next.events)
		})
	}
}

func TestReviewRulesAcceptLegacyStatus(t *testing.T) {
	client, freelancer, project := ruleFixture()
	project.AssignedFreelancerID = &freelancer.UserID
	project.Status = model.ProjectStatusSubmitted

	approve, err := approveRule(client, project)
	require.NoError(t, err)
	require.Equal(t, model.ProjectStatusCompleted, approve.change.To)
	require.Len(t, approve.events, 1)
	require.Equal(t, freelancer.UserID, approve.events[0].RecipientID)

	revise, err := requestRevisionsRule(client, project, "  tighten kerning ")
	require.NoError(t, err)
	require.Equal(t, model.ProjectStatusInProgress, revise.change.To)
	require.Equal(t, "tighten kerning", *revise.change.RevisionNotes)
	require.Nil(t, revise.change.AssignedFreelancerID)
}

func TestNewProjectEvents(t *testing.T) {
	_, _, project := ruleFixture()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	project.Visibility = model.VisibilityPublic
	require.Len(t, newProjectEvents(project, ids), 2)

	project.Visibility = model.VisibilityPrivate
	require.Empty(t, newProjectEvents(project, ids))
}

func TestCanViewProject(t *testing.T) {
	client, freelancer, project := ruleFixture()
	other := model.Principal{UserID: uuid.New(), Role: model.UserRoleFreelancer}
	admin := model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin}

	require.True(t, canViewProject(other, project))

	project.Visibility = model.VisibilityPrivate
	require.False(t, canViewProject(other, project))
	require.True(t, canViewProject(client, project))
	require.True(t, canViewProject(admin, project))

	project.Visibility = model.VisibilityPublic
	project.Status = model.ProjectStatusInProgress
	project.AssignedFreelancerID = &freelancer.UserID
	require.False(t, canViewProject(other, project))
	require.True(t, canViewProject(freelancer, project))

	// A client sharing the freelancer's id must not pass as the assignee.
	impostor := model.Principal{UserID: freelancer.UserID, Role: model.UserRoleClient}
	require.False(t, canAccessDeliverables(impostor, project))
}

func ptr[T any](v T) *T { return &v }
