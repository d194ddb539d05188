// Package provider defines the lifecycle contract for manually verified
// payment channels. Providers validate input and produce session data; they
// do not enforce state-machine legality or touch persistence — that is the
// service's job.
package provider

import (
	"context"
	"time"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/phone"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
)

const (
	CodeMissingPhoneNumber = "MISSING_PHONE_NUMBER"
	CodeInvalidPhoneNumber = "INVALID_PHONE_NUMBER"
	CodeInvalidAmount      = "INVALID_AMOUNT"
)

// ActionNotSupported is the webhook answer for channels that have no
// inbound webhook delivery at all.
const ActionNotSupported = "not_supported"

// Error is the discriminated error a provider returns across the module
// boundary, so callers can distinguish "payment needs attention" from a
// system failure.
type Error struct {
	Code    string
	Message string
	Detail  string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func NewError(code, message, detail string) *Error {
	return &Error{Code: code, Message: message, Detail: detail}
}

// Metadata is the static description a storefront shows for a provider.
type Metadata struct {
	ProviderID          string
	DisplayName         string
	SupportedCurrencies []string
	PhoneFormat         string
}

// Instructions tell the payer how to complete the out-of-band transfer.
type Instructions struct {
	Message string
	Steps   []string
}

type InitiateInput struct {
	AmountCents  int64
	Currency     string
	PhoneNumber  string
	CustomerName string
}

type InitiateOutput struct {
	SessionID      string
	PhoneNumber    phone.Number
	FormattedPhone string
	Status         types.SessionStatus
	Instructions   *Instructions
}

type AuthorizeInput struct {
	SessionID string
	// PhoneNumber is an optional resubmission; when present it must pass
	// the same validation rule as on initiate.
	PhoneNumber string
}

type AuthorizeOutput struct {
	Status types.SessionStatus
	Note   string
}

type CaptureInput struct {
	SessionID string
}

type CaptureOutput struct {
	Status     types.SessionStatus
	CapturedAt time.Time
}

type RefundInput struct {
	SessionID   string
	AmountCents int64
}

type RefundOutput struct {
	RefundedAt time.Time
	Note       string
}

type CancelInput struct {
	SessionID string
}

type CancelOutput struct {
	Status     types.SessionStatus
	CanceledAt time.Time
}

type DeleteInput struct {
	SessionID string
}

// DeleteOutput acknowledges a deletion performed by the owning order
// subsystem; the provider itself never removes anything.
type DeleteOutput struct {
	SessionID string
}

type StatusInput struct {
	Status types.SessionStatus
}

type UpdateInput struct {
	SessionID    string
	PhoneNumber  string
	CustomerName string
}

type UpdateOutput struct {
	PhoneNumber    phone.Number
	FormattedPhone string
	UpdatedAt      time.Time
}

type WebhookResult struct {
	Action string
}

type Provider interface {
	ID() string
	Metadata() *Metadata
	Initiate(ctx context.Context, input *InitiateInput) (*InitiateOutput, error)
	Authorize(ctx context.Context, input *AuthorizeInput) (*AuthorizeOutput, error)
	Capture(ctx context.Context, input *CaptureInput) (*CaptureOutput, error)
	Refund(ctx context.Context, input *RefundInput) (*RefundOutput, error)
	Cancel(ctx context.Context, input *CancelInput) (*CancelOutput, error)
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
	Status(ctx context.Context, input *StatusInput) types.SessionStatus
	Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error)
	WebhookAction(ctx context.Context, payload []byte) (*WebhookResult, error)
}
