package memory

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
)

type userRepo struct {
	s  *Store
	tx *handle
}

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.s.write(r.tx, func() (func(), error) {
		for _, u := range r.s.users {
			if u.ID == user.ID || strings.EqualFold(u.Email, user.Email) || u.UserName == user.UserName {
				return nil, common.ErrorAlreadyExists
			}
		}

		now := r.s.now()
		user.CreatedAt, user.UpdatedAt = now, now
		r.s.users[user.ID] = *user

		id := user.ID
		return func() { delete(r.s.users, id) }, nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

// GetByIDForUpdate needs no row lock: transactions are already serialized.
func (r *userRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	return r.s.write(r.tx, func() (func(), error) {
		prev, ok := r.s.users[user.ID]
		if !ok {
			return nil, common.ErrorNotFound
		}
		for id, u := range r.s.users {
			if id != user.ID && (strings.EqualFold(u.Email, user.Email) || u.UserName == user.UserName) {
				return nil, common.ErrorAlreadyExists
			}
		}

		user.CreatedAt = prev.CreatedAt
		user.UpdatedAt = r.s.now()
		r.s.users[user.ID] = *user

		return func() { r.s.users[prev.ID] = prev }, nil
	})
}
