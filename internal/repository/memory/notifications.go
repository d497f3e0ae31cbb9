package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/freelancehub/internal/model"
)

type NotificationStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{items: map[uuid.UUID]model.Notification{}}
}

func (s *NotificationStore) Create(ctx context.Context, notification *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = time.Now().UTC()
	s.items[notification.ID] = *notification
	return nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.Notification, 0)
	for _, n := range s.items {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, n := range s.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	now := time.Now().UTC()
	for _, id := range ids {
		n, ok := s.items[id]
		if !ok || n.UserID != userID || n.IsRead {
			continue
		}
		n.IsRead = true
		n.ReadAt = &now
		s.items[id] = n
		affected++
	}
	return affected, nil
}

// Users is a fixed user directory, used when no users table is available.
type Users struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

func NewUsers(users ...model.User) *Users {
	u := &Users{users: map[uuid.UUID]model.User{}}
	for _, user := range users {
		u.users[user.ID] = user
	}
	return u
}

func (u *Users) Add(user model.User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[user.ID] = user
}

func (u *Users) ListFreelancerIDs(ctx context.Context) ([]uuid.UUID, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	ids := make([]uuid.UUID, 0)
	for id, user := range u.users {
		if user.Role == model.UserRoleFreelancer {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (u *Users) GetUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	result := make(map[uuid.UUID]model.User, len(ids))
	for _, id := range ids {
		if user, ok := u.users[id]; ok {
			result[id] = user
		}
	}
	return result, nil
}
