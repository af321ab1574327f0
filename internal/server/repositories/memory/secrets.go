package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
)

type secretRepo struct {
	s  *Store
	tx *handle
}

func (r *secretRepo) Create(ctx context.Context, sec *models.Secret) (*models.Secret, error) {
	err := r.s.write(r.tx, func() (func(), error) {
		if _, exists := r.s.secrets[sec.ID]; exists {
			return nil, common.ErrorAlreadyExists
		}
		if _, ok := r.s.users[sec.UserID]; !ok {
			return nil, common.ErrorNotFound
		}

		now := r.s.now()
		sec.CreatedAt, sec.UpdatedAt = now, now
		r.s.secrets[sec.ID] = secretRow{seq: r.s.nextSeq(), s: *sec}

		id := sec.ID
		return func() { delete(r.s.secrets, id) }, nil
	})
	if err != nil {
		return nil, err
	}
	return sec, nil
}

func (r *secretRepo) GetByID(ctx context.Context, userID, id string) (*models.Secret, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.secrets[id]
	if !ok || row.s.UserID != userID {
		return nil, common.ErrorNotFound
	}
	sec := row.s
	return &sec, nil
}

func (r *secretRepo) GetByIDForUpdate(ctx context.Context, userID, id string) (*models.Secret, error) {
	return r.GetByID(ctx, userID, id)
}

func (r *secretRepo) List(ctx context.Context, userID string, secretType models.SecretType) ([]*models.Secret, error) {
	r.s.mu.RLock()
	rows := make([]secretRow, 0)
	for _, row := range r.s.secrets {
		if row.s.UserID == userID && (secretType == "" || row.s.Type == secretType) {
			rows = append(rows, row)
		}
	}
	r.s.mu.RUnlock()

	sortNewestFirst(rows,
		func(x secretRow) time.Time { return x.s.CreatedAt },
		func(x secretRow) uint64 { return x.seq })

	result := make([]*models.Secret, 0, len(rows))
	for i := range rows {
		sec := rows[i].s
		result = append(result, &sec)
	}
	return result, nil
}

func (r *secretRepo) Update(ctx context.Context, sec *models.Secret) error {
	return r.s.write(r.tx, func() (func(), error) {
		prev, ok := r.s.secrets[sec.ID]
		if !ok || prev.s.UserID != sec.UserID {
			return nil, common.ErrorNotFound
		}

		sec.CreatedAt = prev.s.CreatedAt
		sec.UpdatedAt = r.s.now()
		r.s.secrets[sec.ID] = secretRow{seq: prev.seq, s: *sec}

		return func() { r.s.secrets[prev.s.ID] = prev }, nil
	})
}

func (r *secretRepo) Delete(ctx context.Context, userID, id string) (*models.Secret, error) {
	var deleted models.Secret

	err := r.s.write(r.tx, func() (func(), error) {
		prev, ok := r.s.secrets[id]
		if !ok || prev.s.UserID != userID {
			return nil, common.ErrorNotFound
		}

		delete(r.s.secrets, id)
		deleted = prev.s

		return func() { r.s.secrets[id] = prev }, nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
