package repository

import (
	"context"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/entity"
)

type SessionEventRepository struct {
	db DBTX
}

func NewSessionEventRepository(db DBTX) *SessionEventRepository {
	return &SessionEventRepository{db: db}
}

func (r *SessionEventRepository) Create(ctx context.Context, event *entity.SessionEvent) error {
	query := `
		INSERT INTO session_events (
			session_id, event_type, actor, old_status, new_status, payload_json, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.SessionID,
		event.EventType,
		nullableStringValue(event.Actor),
		nullableInt32Value(event.OldStatus),
		event.NewStatus,
		nullableStringValue(event.PayloadJSON),
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)
	return nil
}
