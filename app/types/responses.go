package types

type HealthResponse struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type ValidationErrorResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Details []FieldError `json:"details"`
}

// PaymentInstructions tell the payer how to complete the out-of-band
// transfer for a manually verified payment.
type PaymentInstructions struct {
	Message     string   `json:"message"`
	PhoneNumber string   `json:"phone_number"`
	Steps       []string `json:"steps"`
}

// Session is the wire representation of a payment session. The phone number
// is always the display-formatted form.
type Session struct {
	ID                   string               `json:"id"`
	ProviderID           string               `json:"provider_id"`
	AmountCents          int64                `json:"amount_cents"`
	Currency             string               `json:"currency_code"`
	PhoneNumber          string               `json:"phone_number"`
	CustomerName         string               `json:"customer_name,omitempty"`
	Status               string               `json:"status"`
	TransactionReference string               `json:"transaction_reference,omitempty"`
	AdminNotes           string               `json:"admin_notes,omitempty"`
	RefundedCents        int64                `json:"refunded_cents"`
	PaymentInstructions  *PaymentInstructions `json:"payment_instructions,omitempty"`
	CreatedAt            string               `json:"created_at"`
	UpdatedAt            string               `json:"updated_at"`
	VerifiedAt           string               `json:"verified_at,omitempty"`
	CapturedAt           string               `json:"captured_at,omitempty"`
	CanceledAt           string               `json:"canceled_at,omitempty"`
	RefundedAt           string               `json:"refunded_at,omitempty"`
}

type SessionEnvelopeResponse struct {
	Success bool     `json:"success"`
	Data    *Session `json:"data"`
}

type SessionListData struct {
	Payments []*Session `json:"payments"`
	Count    int        `json:"count"`
	Limit    int32      `json:"limit"`
	Offset   int32      `json:"offset"`
}

type ListSessionsResponse struct {
	Success bool             `json:"success"`
	Data    *SessionListData `json:"data"`
}

type VerificationResult struct {
	PaymentID            string `json:"payment_id"`
	Status               string `json:"status"`
	TransactionReference string `json:"transaction_reference,omitempty"`
	AdminNotes           string `json:"admin_notes,omitempty"`
	VerifiedAt           string `json:"verified_at"`
	VerifiedBy           string `json:"verified_by"`
}

type VerificationResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    *VerificationResult `json:"data"`
}

type StatusUpdateResult struct {
	PaymentID  string `json:"payment_id"`
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes,omitempty"`
	UpdatedAt  string `json:"updated_at"`
	UpdatedBy  string `json:"updated_by"`
}

type StatusUpdateResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    *StatusUpdateResult `json:"data"`
}

type ProviderMetadataResponse struct {
	Message             string   `json:"message"`
	ProviderID          string   `json:"provider_id"`
	SupportedCurrencies []string `json:"supported_currencies"`
	PhoneFormat         string   `json:"phone_format"`
}

type WebhookActionResponse struct {
	Action string `json:"action"`
}
