package entity

import "time"

const (
	NotifyNone    int32 = 0
	NotifyPending int32 = 1
	NotifySuccess int32 = 10
	NotifyFailed  int32 = 20
)

// PaymentSession is one attempt to pay through a manually verified channel.
// PhoneNumber is always stored canonically (digits only); Version is the
// optimistic-concurrency stamp checked on every update.
type PaymentSession struct {
	ID         string
	ProviderID string

	AmountCents int64
	Currency    string

	PhoneNumber  string
	CustomerName *string

	Status int32

	TransactionReference *string
	AdminNotes           *string

	RefundedCents int64

	StatusCallbackURL *string
	NotifyStatus      int32
	NotifyAttempts    int32
	NotifyNextAt      *time.Time
	NotifyLastErr     *string

	Version int64

	VerifiedAt *time.Time
	CapturedAt *time.Time
	CanceledAt *time.Time
	RefundedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
