package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
)

type activityRepo struct {
	s  *Store
	tx *handle
}

func (r *activityRepo) Create(ctx context.Context, a *models.Activity) error {
	return r.s.write(r.tx, func() (func(), error) {
		if _, ok := r.s.users[a.UserID]; !ok {
			return nil, common.ErrorNotFound
		}

		a.CreatedAt = r.s.now()
		r.s.activities = append(r.s.activities, activityRow{seq: r.s.nextSeq(), a: *a})

		n := len(r.s.activities) - 1
		return func() { r.s.activities = r.s.activities[:n] }, nil
	})
}

func (r *activityRepo) ListRecent(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	r.s.mu.RLock()
	rows := make([]activityRow, 0)
	for _, row := range r.s.activities {
		if row.a.UserID == userID {
			rows = append(rows, row)
		}
	}
	r.s.mu.RUnlock()

	sortNewestFirst(rows,
		func(x activityRow) time.Time { return x.a.CreatedAt },
		func(x activityRow) uint64 { return x.seq })

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]*models.Activity, 0, len(rows))
	for i := range rows {
		a := rows[i].a
		result = append(result, &a)
	}
	return result, nil
}
