package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/phone"
)

// FieldError reports one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the error returned by request validation; controllers turn
// it into a 400 response with per-field details.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, item := range e {
		parts = append(parts, item.Field+": "+item.Message)
	}
	return strings.Join(parts, "; ")
}

func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

type InitiateSessionRequest struct {
	PhoneNumber       string `json:"phone_number"`
	CustomerName      string `json:"customer_name"`
	AmountCents       int64  `json:"amount_cents"`
	Currency          string `json:"currency_code"`
	StatusCallbackURL string `json:"status_callback_url"`
}

func NewInitiateSessionRequestFromContext(ctx echo.Context) (*InitiateSessionRequest, error) {
	var body InitiateSessionRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.PhoneNumber = strings.TrimSpace(body.PhoneNumber)
	body.CustomerName = strings.TrimSpace(body.CustomerName)
	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.StatusCallbackURL = strings.TrimSpace(body.StatusCallbackURL)

	return &body, nil
}

// Validate checks the request against the provider's phone rule and the
// supported currency. The provider re-validates on initiate; this pass
// exists to report field-level detail at the HTTP boundary.
func (r *InitiateSessionRequest) Validate(rule phone.Rule, currency string) error {
	var fieldErrs FieldErrors

	if r.PhoneNumber == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "phone_number", Message: "Phone number is required"})
	} else if _, err := rule.Parse(r.PhoneNumber); err != nil {
		fieldErrs = append(fieldErrs, FieldError{
			Field:   "phone_number",
			Message: "Phone number must match " + rule.Describe(),
		})
	}
	if r.AmountCents <= 0 {
		fieldErrs = append(fieldErrs, FieldError{Field: "amount_cents", Message: "Amount must be positive"})
	}
	if r.Currency != "" && r.Currency != currency {
		fieldErrs = append(fieldErrs, FieldError{Field: "currency_code", Message: "Currency must be " + currency})
	}

	return fieldErrs.OrNil()
}

type VerifyPaymentRequest struct {
	PaymentID            string `json:"payment_id"`
	TransactionReference string `json:"transaction_reference"`
	Verified             *bool  `json:"verified"`
	AdminNotes           string `json:"admin_notes"`
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) (*VerifyPaymentRequest, error) {
	var body VerifyPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.PaymentID = strings.TrimSpace(body.PaymentID)
	body.TransactionReference = strings.TrimSpace(body.TransactionReference)
	body.AdminNotes = strings.TrimSpace(body.AdminNotes)

	return &body, nil
}

func (r *VerifyPaymentRequest) Validate() error {
	var fieldErrs FieldErrors

	if r.PaymentID == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "payment_id", Message: "Payment ID is required"})
	}
	if r.Verified == nil {
		fieldErrs = append(fieldErrs, FieldError{Field: "verified", Message: "Verified flag is required"})
	}

	return fieldErrs.OrNil()
}

func (r *VerifyPaymentRequest) IsVerified() bool {
	return r.Verified != nil && *r.Verified
}

type UpdateStatusRequest struct {
	PaymentID  string `json:"payment_id"`
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

func NewUpdateStatusRequestFromContext(ctx echo.Context) (*UpdateStatusRequest, error) {
	var body UpdateStatusRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.PaymentID = strings.TrimSpace(body.PaymentID)
	body.Status = strings.ToLower(strings.TrimSpace(body.Status))
	body.AdminNotes = strings.TrimSpace(body.AdminNotes)

	return &body, nil
}

func (r *UpdateStatusRequest) Validate() error {
	var fieldErrs FieldErrors

	if r.PaymentID == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "payment_id", Message: "Payment ID is required"})
	}
	if _, ok := ParseAdminStatus(r.Status); !ok {
		fieldErrs = append(fieldErrs, FieldError{
			Field:   "status",
			Message: "Status must be one of pending, verified, failed, refunded, canceled",
		})
	}

	return fieldErrs.OrNil()
}

type ListSessionsRequest struct {
	Status    string
	HasStatus bool
	Limit     int32
	Offset    int32
}

func NewListSessionsRequestFromContext(ctx echo.Context) (*ListSessionsRequest, error) {
	req := &ListSessionsRequest{
		Status: strings.ToLower(strings.TrimSpace(ctx.QueryParam("status"))),
		Limit:  50,
		Offset: 0,
	}
	req.HasStatus = req.Status != ""

	if limitRaw := strings.TrimSpace(ctx.QueryParam("limit")); limitRaw != "" {
		limit, err := strconv.ParseInt(limitRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Limit = int32(limit)
	}
	if offsetRaw := strings.TrimSpace(ctx.QueryParam("offset")); offsetRaw != "" {
		offset, err := strconv.ParseInt(offsetRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Offset = int32(offset)
	}

	return req, nil
}

func (r *ListSessionsRequest) Validate() error {
	if r.Limit <= 0 || r.Limit > 500 {
		return errors.New("limit must be between 1 and 500")
	}
	if r.Offset < 0 {
		return errors.New("offset must be >= 0")
	}
	if r.HasStatus {
		if _, ok := ParseSessionStatus(r.Status); !ok {
			return errors.New("invalid status")
		}
	}
	return nil
}

type RefundSessionRequest struct {
	SessionID   string `json:"-"`
	AmountCents int64  `json:"amount_cents"`
}

func NewRefundSessionRequestFromContext(ctx echo.Context) (*RefundSessionRequest, error) {
	var body RefundSessionRequest
	if err := ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.SessionID = strings.TrimSpace(ctx.Param("id"))

	return &body, nil
}

func (r *RefundSessionRequest) Validate() error {
	var fieldErrs FieldErrors

	if r.SessionID == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "id", Message: "Payment ID is required"})
	}
	if r.AmountCents <= 0 {
		fieldErrs = append(fieldErrs, FieldError{Field: "amount_cents", Message: "Refund amount must be positive"})
	}

	return fieldErrs.OrNil()
}

type UpdateSessionRequest struct {
	SessionID    string `json:"-"`
	PhoneNumber  string `json:"phone_number"`
	CustomerName string `json:"customer_name"`
}

func NewUpdateSessionRequestFromContext(ctx echo.Context) (*UpdateSessionRequest, error) {
	var body UpdateSessionRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.SessionID = strings.TrimSpace(ctx.Param("id"))
	body.PhoneNumber = strings.TrimSpace(body.PhoneNumber)
	body.CustomerName = strings.TrimSpace(body.CustomerName)

	return &body, nil
}

func (r *UpdateSessionRequest) Validate() error {
	if r.SessionID == "" {
		return FieldErrors{{Field: "id", Message: "Payment ID is required"}}
	}
	return nil
}
