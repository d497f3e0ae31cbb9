package model

import (
	"time"

	"github.com/google/uuid"
)

type Deliverable struct {
	ID               uuid.UUID `json:"id"`
	ProjectID        uuid.UUID `json:"project_id"`
	FreelancerID     uuid.UUID `json:"freelancer_id"`
	FileLocation     string    `json:"-"`
	OriginalFileName string    `json:"original_file_name"`
	Description      *string   `json:"description,omitempty"`
	SizeBytes        int64     `json:"size_bytes"`
	Checksum         string    `json:"checksum"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

type StoredFile struct {
	Location  string
	SizeBytes int64
	Checksum  string
}
