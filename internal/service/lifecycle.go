package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/freelancehub/internal/model"
)

// The rules below decide whether a lifecycle step is legal for the loaded state and
// describe its effect. They never touch storage; callers apply the returned transition
// inside a transaction and dispatch the events once it commits.

type transition struct {
	from   []model.ProjectStatus
	change model.ProjectChange
	events []model.NotificationEvent
}

var (
	workStatuses   = []model.ProjectStatus{model.ProjectStatusAssigned, model.ProjectStatusInProgress}
	reviewStatuses = []model.ProjectStatus{model.ProjectStatusSubmitted, model.ProjectStatusCompletedPendingReview}
)

func statusIn(status model.ProjectStatus, set []model.ProjectStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func joinStatuses(set []model.ProjectStatus) string {
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = "'" + string(s) + "'"
	}
	return strings.Join(parts, " or ")
}

func requireOwner(principal model.Principal, project model.Project) error {
	if !principal.IsClient() || !project.OwnedBy(principal.UserID) {
		return fmt.Errorf("%w: you do not own this project", ErrPermissionDenied)
	}
	return nil
}

func requireAssignee(principal model.Principal, project model.Project) error {
	if !principal.IsFreelancer() || !project.AssignedTo(principal.UserID) {
		return fmt.Errorf("%w: you are not assigned to this project", ErrPermissionDenied)
	}
	return nil
}

// canViewProject hides private and no longer open projects from everyone except the
// owner, the assigned freelancer and admins.
func canViewProject(principal model.Principal, project model.Project) bool {
	if principal.IsAdmin() {
		return true
	}
	involved := (principal.IsClient() && project.OwnedBy(principal.UserID)) ||
		(principal.IsFreelancer() && project.AssignedTo(principal.UserID))
	if involved {
		return true
	}
	return project.Visibility != model.VisibilityPrivate && project.Status == model.ProjectStatusOpen
}

func canAccessDeliverables(principal model.Principal, project model.Project) bool {
	return (principal.IsClient() && project.OwnedBy(principal.UserID)) ||
		(principal.IsFreelancer() && project.AssignedTo(principal.UserID))
}

func submitBidRule(project model.Project, existing *model.Bid, input SubmitBidInput) error {
	if project.Status != model.ProjectStatusOpen {
		return fmt.Errorf("%w: project not open (status '%s')", ErrInvalidState, project.Status)
	}
	if existing != nil {
		return fmt.Errorf("%w: duplicate bid, you have already placed a bid on this project", ErrConflict)
	}
	return validateInput(input)
}

func newBidEvents(project model.Project, bid model.Bid) []model.NotificationEvent {
	bidID := bid.ID
	return []model.NotificationEvent{{
		RecipientID: project.ClientID,
		Message:     fmt.Sprintf("A new bid has been submitted for your project %q.", project.Title),
		Type:        model.NotificationNewBid,
		ProjectID:   project.ID,
		BidID:       &bidID,
	}}
}

type acceptOutcome struct {
	transition
	rejected []model.Bid
}

// acceptBidRule checks ownership, then the bid and project states, in that order.
// pending lists the project's pending bids and may include the accepted one.
func acceptBidRule(principal model.Principal, project model.Project, bid model.Bid, pending []model.Bid) (acceptOutcome, error) {
	if err := requireOwner(principal, project); err != nil {
		return acceptOutcome{}, err
	}
	if bid.Status != model.BidStatusPending {
		return acceptOutcome{}, fmt.Errorf("%w: bid cannot be accepted, it is already '%s'", ErrInvalidState, bid.Status)
	}
	if project.Status != model.ProjectStatusOpen {
		return acceptOutcome{}, fmt.Errorf("%w: project is already '%s', cannot accept new bids", ErrInvalidState, project.Status)
	}

	winner := bid.FreelancerID
	bidID := bid.ID
	out := acceptOutcome{
		transition: transition{
			from: []model.ProjectStatus{model.ProjectStatusOpen},
			change: model.ProjectChange{
				To:                   model.ProjectStatusAssigned,
				AssignedFreelancerID: &winner,
			},
			events: []model.NotificationEvent{{
				RecipientID: winner,
				Message:     fmt.Sprintf("Congratulations! Your bid for %q has been accepted.", project.Title),
				Type:        model.NotificationBidAccepted,
				ProjectID:   project.ID,
				BidID:       &bidID,
			}},
		},
	}
	for _, other := range pending {
		if other.ID == bid.ID || other.Status != model.BidStatusPending {
			continue
		}
		otherID := other.ID
		out.rejected = append(out.rejected, other)
		out.events = append(out.events, model.NotificationEvent{
			RecipientID: other.FreelancerID,
			Message:     fmt.Sprintf("Your bid for %q was not accepted.", project.Title),
			Type:        model.NotificationBidRejected,
			ProjectID:   project.ID,
			BidID:       &otherID,
		})
	}
	return out, nil
}

func rejectBidRule(principal model.Principal, project model.Project, bid model.Bid) ([]model.NotificationEvent, error) {
	if err := requireOwner(principal, project); err != nil {
		return nil, err
	}
	if bid.Status != model.BidStatusPending {
		return nil, fmt.Errorf("%w: bid cannot be rejected, it is already '%s'", ErrInvalidState, bid.Status)
	}
	bidID := bid.ID
	return []model.NotificationEvent{{
		RecipientID: bid.FreelancerID,
		Message:     fmt.Sprintf("Your bid for %q has been rejected.", project.Title),
		Type:        model.NotificationBidRejected,
		ProjectID:   project.ID,
		BidID:       &bidID,
	}}, nil
}

// uploadRule allows uploads while work is ongoing. The first upload on an assigned project
// starts the work; review is only ever requested through markForReviewRule.
func uploadRule(principal model.Principal, project model.Project) (*transition, error) {
	if err := requireAssignee(principal, project); err != nil {
		return nil, err
	}
	if !statusIn(project.Status, workStatuses) {
		return nil, fmt.Errorf("%w: project status is '%s', deliverables are accepted only while %s",
			ErrInvalidState, project.Status, joinStatuses(workStatuses))
	}
	if project.Status == model.ProjectStatusInProgress {
		return nil, nil
	}
	return &transition{
		from:   []model.ProjectStatus{model.ProjectStatusAssigned},
		change: model.ProjectChange{To: model.ProjectStatusInProgress},
	}, nil
}

func markForReviewRule(principal model.Principal, project model.Project) (transition, error) {
	if err := requireAssignee(principal, project); err != nil {
		return transition{}, err
	}
	if !statusIn(project.Status, workStatuses) {
		return transition{}, fmt.Errorf("%w: project status is '%s', only %s projects can be marked for review",
			ErrInvalidState, project.Status, joinStatuses(workStatuses))
	}
	return transition{
		from:   workStatuses,
		change: model.ProjectChange{To: model.ProjectStatusCompletedPendingReview},
		events: []model.NotificationEvent{{
			RecipientID: project.ClientID,
			Message:     fmt.Sprintf("Your project %q has been marked as complete by the freelancer and is awaiting your review.", project.Title),
			Type:        model.NotificationProjectReviewNeeded,
			ProjectID:   project.ID,
		}},
	}, nil
}

func approveRule(principal model.Principal, project model.Project) (transition, error) {
	if err := requireOwner(principal, project); err != nil {
		return transition{}, err
	}
	if !statusIn(project.Status, reviewStatuses) {
		return transition{}, fmt.Errorf("%w: project cannot be approved, current status: '%s'", ErrInvalidState, project.Status)
	}
	t := transition{
		from:   reviewStatuses,
		change: model.ProjectChange{To: model.ProjectStatusCompleted},
	}
	if project.AssignedFreelancerID != nil {
		t.events = append(t.events, model.NotificationEvent{
			RecipientID: *project.AssignedFreelancerID,
			Message:     fmt.Sprintf("Your project %q has been approved and marked as completed by the client.", project.Title),
			Type:        model.NotificationProjectApproved,
			ProjectID:   project.ID,
		})
	}
	return t, nil
}

func requestRevisionsRule(principal model.Principal, project model.Project, message string) (transition, error) {
	if err := requireOwner(principal, project); err != nil {
		return transition{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return transition{}, fmt.Errorf("%w: revision message is required", ErrInvalidInput)
	}
	if !statusIn(project.Status, reviewStatuses) {
		return transition{}, fmt.Errorf("%w: project status is '%s', only %s projects can have revisions requested",
			ErrInvalidState, project.Status, joinStatuses(reviewStatuses))
	}
	t := transition{
		from:   reviewStatuses,
		change: model.ProjectChange{To: model.ProjectStatusInProgress, RevisionNotes: &message},
	}
	if project.AssignedFreelancerID != nil {
		t.events = append(t.events, model.NotificationEvent{
			RecipientID: *project.AssignedFreelancerID,
			Message:     fmt.Sprintf("The client requested revisions on %q: %s", project.Title, message),
			Type:        model.NotificationRevisionsRequested,
			ProjectID:   project.ID,
		})
	}
	return t, nil
}

func newProjectEvents(project model.Project, freelancerIDs []uuid.UUID) []model.NotificationEvent {
	if project.Visibility == model.VisibilityPrivate {
		return nil
	}
	events := make([]model.NotificationEvent, 0, len(freelancerIDs))
	for _, id := range freelancerIDs {
		events = append(events, model.NotificationEvent{
			RecipientID: id,
			Message:     fmt.Sprintf("A new project %q has been posted! Check it out.", project.Title),
			Type:        model.NotificationNewProject,
			ProjectID:   project.ID,
		})
	}
	return events
}
