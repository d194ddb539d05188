package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/entity"
)

var (
	ErrSessionNotFound = errors.New("payment session not found")
	ErrSessionExists   = errors.New("payment session already exists")
	// ErrStaleSession means the version stamp did not match: another
	// writer updated the row between read and write.
	ErrStaleSession = errors.New("payment session was modified concurrently")
)

type SessionFilter struct {
	ProviderID string
	HasStatus  bool
	Status     int32
	Limit      int32
	Offset     int32
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, provider_id, amount_cents, currency, phone_number, customer_name,
	status, transaction_reference, admin_notes, refunded_cents,
	status_callback_url, notify_status, notify_attempts, notify_next_at, notify_last_error,
	version, verified_at, captured_at, canceled_at, refunded_at,
	created_at, updated_at
`

func (r *SessionRepository) Create(ctx context.Context, session *entity.PaymentSession) error {
	query := `
		INSERT INTO payment_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.ProviderID,
		session.AmountCents,
		session.Currency,
		session.PhoneNumber,
		nullableStringValue(session.CustomerName),
		session.Status,
		nullableStringValue(session.TransactionReference),
		nullableStringValue(session.AdminNotes),
		session.RefundedCents,
		nullableStringValue(session.StatusCallbackURL),
		session.NotifyStatus,
		session.NotifyAttempts,
		nullableTimeValue(session.NotifyNextAt),
		nullableStringValue(session.NotifyLastErr),
		session.Version,
		nullableTimeValue(session.VerifiedAt),
		nullableTimeValue(session.CapturedAt),
		nullableTimeValue(session.CanceledAt),
		nullableTimeValue(session.RefundedAt),
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrSessionExists
		}
		return err
	}

	return nil
}

// Update writes the session guarded by its version stamp and bumps the
// stamp on success. A zero-row update means a concurrent writer won.
func (r *SessionRepository) Update(ctx context.Context, session *entity.PaymentSession) error {
	query := `
		UPDATE payment_sessions SET
			phone_number = ?,
			customer_name = ?,
			status = ?,
			transaction_reference = ?,
			admin_notes = ?,
			refunded_cents = ?,
			status_callback_url = ?,
			notify_status = ?,
			notify_attempts = ?,
			notify_next_at = ?,
			notify_last_error = ?,
			version = version + 1,
			verified_at = ?,
			captured_at = ?,
			canceled_at = ?,
			refunded_at = ?,
			updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		session.PhoneNumber,
		nullableStringValue(session.CustomerName),
		session.Status,
		nullableStringValue(session.TransactionReference),
		nullableStringValue(session.AdminNotes),
		session.RefundedCents,
		nullableStringValue(session.StatusCallbackURL),
		session.NotifyStatus,
		session.NotifyAttempts,
		nullableTimeValue(session.NotifyNextAt),
		nullableStringValue(session.NotifyLastErr),
		nullableTimeValue(session.VerifiedAt),
		nullableTimeValue(session.CapturedAt),
		nullableTimeValue(session.CanceledAt),
		nullableTimeValue(session.RefundedAt),
		session.UpdatedAt,
		session.ID,
		session.Version,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		exists, err := r.exists(ctx, session.ID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrSessionNotFound
		}
		return ErrStaleSession
	}

	session.Version++
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*entity.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions WHERE id = ?`

	session := &entity.PaymentSession{}
	if err := scanSession(r.db.QueryRowContext(ctx, query, id), session); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return session, nil
}

func (r *SessionRepository) List(ctx context.Context, filter SessionFilter) ([]*entity.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions`

	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)

	if strings.TrimSpace(filter.ProviderID) != "" {
		conditions = append(conditions, "provider_id = ?")
		args = append(args, filter.ProviderID)
	}
	if filter.HasStatus {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	return r.querySessions(ctx, query, args...)
}

func (r *SessionRepository) ListExpiredPending(ctx context.Context, pendingStatus int32, cutoff time.Time, limit int32) ([]*entity.PaymentSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM payment_sessions
		WHERE status = ?
		  AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	return r.querySessions(ctx, query, pendingStatus, cutoff, limit)
}

func (r *SessionRepository) ListDueNotify(ctx context.Context, now time.Time, limit int32) ([]*entity.PaymentSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM payment_sessions
		WHERE notify_status = ?
		  AND notify_next_at IS NOT NULL
		  AND notify_next_at <= ?
		ORDER BY notify_next_at ASC
		LIMIT ?
	`

	return r.querySessions(ctx, query, entity.NotifyPending, now, limit)
}

func (r *SessionRepository) exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM payment_sessions WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SessionRepository) querySessions(ctx context.Context, query string, args ...interface{}) ([]*entity.PaymentSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*entity.PaymentSession, 0)
	for rows.Next() {
		item := &entity.PaymentSession{}
		if err := scanSession(rows, item); err != nil {
			return nil, err
		}
		sessions = append(sessions, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(scan rowScanner, session *entity.PaymentSession) error {
	var customerName sql.NullString
	var transactionReference sql.NullString
	var adminNotes sql.NullString
	var statusCallbackURL sql.NullString
	var notifyNextAt sql.NullTime
	var notifyLastErr sql.NullString
	var verifiedAt sql.NullTime
	var capturedAt sql.NullTime
	var canceledAt sql.NullTime
	var refundedAt sql.NullTime

	err := scan.Scan(
		&session.ID,
		&session.ProviderID,
		&session.AmountCents,
		&session.Currency,
		&session.PhoneNumber,
		&customerName,
		&session.Status,
		&transactionReference,
		&adminNotes,
		&session.RefundedCents,
		&statusCallbackURL,
		&session.NotifyStatus,
		&session.NotifyAttempts,
		&notifyNextAt,
		&notifyLastErr,
		&session.Version,
		&verifiedAt,
		&capturedAt,
		&canceledAt,
		&refundedAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return err
	}

	session.CustomerName = stringPtrFromNull(customerName)
	session.TransactionReference = stringPtrFromNull(transactionReference)
	session.AdminNotes = stringPtrFromNull(adminNotes)
	session.StatusCallbackURL = stringPtrFromNull(statusCallbackURL)
	session.NotifyNextAt = timePtrFromNull(notifyNextAt)
	session.NotifyLastErr = stringPtrFromNull(notifyLastErr)
	session.VerifiedAt = timePtrFromNull(verifiedAt)
	session.CapturedAt = timePtrFromNull(capturedAt)
	session.CanceledAt = timePtrFromNull(canceledAt)
	session.RefundedAt = timePtrFromNull(refundedAt)

	return nil
}
