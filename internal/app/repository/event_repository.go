package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pastebin-lite/internal/app/model"
)

// EventRepository defines the data access contract for paste events.
type EventRepository interface {
	Insert(ctx context.Context, event *model.PasteEvent) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a pgx-backed EventRepository. The schema is
// managed by GORM migrations at startup; writes here bypass the ORM.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Insert(ctx context.Context, event *model.PasteEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO paste_events (id, paste_id, kind, occurred_at) VALUES ($1, $2, $3, $4)`,
		event.ID, event.PasteID, event.Kind, event.Timestamp)
	return err
}

func (r *eventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM paste_events WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
