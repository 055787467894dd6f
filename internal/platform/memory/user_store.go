package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserStore implements store.UserStore over a DB.
type UserStore struct {
	db *DB
}

// NewUserStore returns a user store backed by db.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create.
func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	for _, u := range s.db.users {
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	s.db.users[user.ID] = *user
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, u := range s.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByIDs implements store.UserStore.GetByIDs.
func (s *UserStore) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make(map[uuid.UUID]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

// List implements store.UserStore.List.
func (s *UserStore) List(_ context.Context) ([]*domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.String() > users[j].ID.String()
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// Delete implements store.UserStore.Delete.
func (s *UserStore) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[id]; !ok {
		return 0, store.ErrUserNotFound
	}

	var removed int64
	for tid, t := range s.db.tasks {
		if t.AssignedTo == id || t.CreatedBy == id {
			delete(s.db.tasks, tid)
			removed++
		}
	}
	delete(s.db.users, id)
	return removed, nil
}
