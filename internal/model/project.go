package model

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusOpen                   ProjectStatus = "open"
	ProjectStatusAssigned               ProjectStatus = "assigned"
	ProjectStatusInProgress             ProjectStatus = "in_progress"
	ProjectStatusCompletedPendingReview ProjectStatus = "completed_pending_review"
	ProjectStatusCompleted              ProjectStatus = "completed"
	// ProjectStatusSubmitted is a legacy alias of completed_pending_review. It is accepted as a
	// source status for review transitions and never written.
	ProjectStatusSubmitted ProjectStatus = "submitted"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type Project struct {
	ID                   uuid.UUID     `json:"id"`
	ClientID             uuid.UUID     `json:"client_id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	Budget               float64       `json:"budget"`
	Deadline             time.Time     `json:"deadline"`
	Category             string        `json:"category"`
	Visibility           Visibility    `json:"visibility"`
	SkillsRequired       StringList    `json:"skills_required"`
	AttachedFiles        StringList    `json:"attached_files"`
	Status               ProjectStatus `json:"status"`
	AssignedFreelancerID *uuid.UUID    `json:"assigned_freelancer_id,omitempty"`
	RevisionNotes        *string       `json:"revision_notes,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

func (p Project) OwnedBy(userID uuid.UUID) bool {
	return p.ClientID == userID
}

func (p Project) AssignedTo(userID uuid.UUID) bool {
	return p.AssignedFreelancerID != nil && *p.AssignedFreelancerID == userID
}

// ProjectChange is applied by a conditional status transition. Nil fields are left untouched.
type ProjectChange struct {
	To                   ProjectStatus
	AssignedFreelancerID *uuid.UUID
	RevisionNotes        *string
}

// ProjectDetails holds the editable fields of an open project.
type ProjectDetails struct {
	Title          string
	Description    string
	Budget         float64
	Deadline       time.Time
	Category       string
	Visibility     Visibility
	SkillsRequired StringList
}

type ClientProject struct {
	Project
	BidCount int64 `json:"bid_count"`
}
