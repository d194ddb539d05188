package entity

import "time"

// Verification records one admin verification decision for a session.
type Verification struct {
	ID uint64

	SessionID string

	Actor    string
	Verified bool

	TransactionReference *string
	Notes                *string

	CreatedAt time.Time
}
