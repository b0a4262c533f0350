package memstore

import (
	"context"

	"github.com/BearBump/CargoFlow/internal/models"
	"github.com/BearBump/CargoFlow/internal/storage"
)

func copyUser(u models.User) *models.User {
	u.PasswordHash = clone(u.PasswordHash)
	return &u
}

func (s *MemoryStore) emailTaken(email string, except int64) bool {
	for id, u := range s.users.rows {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(u.Email, 0) {
		return storage.ErrDuplicate
	}
	u.ID = s.users.insert(models.User{})
	u.CreatedAt = s.now().UTC()
	s.users.rows[u.ID] = *copyUser(*u)
	return nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, u *models.User) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users.rows[u.ID]; !ok {
		return storage.ErrNotFound
	}
	if s.emailTaken(u.Email, u.ID) {
		return storage.ErrDuplicate
	}
	s.users.rows[u.ID] = *copyUser(*u)
	return nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id int64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users.rows, id)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users.rows {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemoryStore) ListUsers(ctx context.Context, f models.UserFilter) ([]*models.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.User{}
	for _, id := range s.users.ids() {
		u := s.users.rows[id]
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, copyUser(u))
	}
	return out, nil
}
