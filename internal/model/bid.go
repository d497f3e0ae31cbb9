package model

import (
	"time"

	"github.com/google/uuid"
)

type BidStatus string

const (
	BidStatusPending   BidStatus = "pending"
	BidStatusAccepted  BidStatus = "accepted"
	BidStatusRejected  BidStatus = "rejected"
	BidStatusCompleted BidStatus = "completed"
)

type Bid struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	Amount       float64   `json:"amount"`
	Proposal     string    `json:"proposal"`
	DeliveryDays int       `json:"delivery_days"`
	Status       BidStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FreelancerBid is a bid as listed for its author, with the project it targets.
type FreelancerBid struct {
	Bid
	ProjectTitle  string        `json:"project_title"`
	ProjectStatus ProjectStatus `json:"project_status"`
}
