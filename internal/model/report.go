package model

import "time"

type BidComparisonRow struct {
	Bid
	FreelancerName string
}

// BidComparison feeds the xlsx export of every bid placed on a project.
type BidComparison struct {
	Project     Project
	ClientName  string
	GeneratedAt time.Time
	Rows        []BidComparisonRow
}

// CompletionStatement feeds the PDF issued once a project is completed.
type CompletionStatement struct {
	Project      Project
	Client       Party
	Freelancer   Party
	AcceptedBid  Bid
	Deliverables []Deliverable
	IssuedAt     time.Time
}
