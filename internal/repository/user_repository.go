package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freelancehub/internal/model"
)

// UserRepository reads the users table maintained by the account service.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) ListFreelancerIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT id
		FROM users
		WHERE role = ?
		ORDER BY id
	`, model.UserRoleFreelancer).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	result := make(map[uuid.UUID]model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []model.User
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, username, email, role
		FROM users
		WHERE id IN ?
	`, ids).Scan(&users).Error; err != nil {
		return nil, err
	}
	for _, user := range users {
		result[user.ID] = user
	}
	return result, nil
}
