package repository

import (
	"context"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/entity"
)

type VerificationRepository struct {
	db DBTX
}

func NewVerificationRepository(db DBTX) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(ctx context.Context, verification *entity.Verification) error {
	query := `
		INSERT INTO verifications (
			session_id, actor, verified, transaction_reference, notes, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		verification.SessionID,
		verification.Actor,
		verification.Verified,
		nullableStringValue(verification.TransactionReference),
		nullableStringValue(verification.Notes),
		verification.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	verification.ID = uint64(id)
	return nil
}
