package http

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUserRepo(users ...domain.User) *memoryUserRepo {
	repo := &memoryUserRepo{users: make(map[string]*domain.User)}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (r *memoryUserRepo) Upsert(ctx context.Context, identity domain.Identity, promote bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	user, ok := r.users[identity.UserID]
	if !ok {
		user = &domain.User{ID: identity.UserID, Role: domain.UserRoleUser, CreatedAt: now}
		r.users[identity.UserID] = user
	}
	user.Email = identity.Email
	user.Name = identity.Name
	user.Image = identity.Image
	user.LastLoginAt = &now
	if promote {
		user.Role = domain.UserRoleAdmin
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memoryUserRepo) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

func (r *memoryUserRepo) CountByRole(ctx context.Context) ([]domain.RoleCount, error) {
	return nil, nil
}

func (r *memoryUserRepo) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	return nil, nil
}
