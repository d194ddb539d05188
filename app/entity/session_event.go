package entity

import "time"

// SessionEvent is one entry in the append-only transition audit log.
type SessionEvent struct {
	ID uint64

	SessionID string

	EventType string
	Actor     *string

	OldStatus *int32
	NewStatus int32

	PayloadJSON *string

	CreatedAt time.Time
}
