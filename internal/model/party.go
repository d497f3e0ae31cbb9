package model

import "github.com/google/uuid"

// Party is one side of a completed engagement as printed on documents.
type Party struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  UserRole
}
