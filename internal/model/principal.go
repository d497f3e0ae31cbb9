package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleClient     UserRole = "client"
	UserRoleFreelancer UserRole = "freelancer"
	UserRoleAdmin      UserRole = "admin"
)

type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsClient() bool {
	return p.Role == UserRoleClient
}

func (p Principal) IsFreelancer() bool {
	return p.Role == UserRoleFreelancer
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}
