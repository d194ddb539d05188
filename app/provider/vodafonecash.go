package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/factory"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/phone"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
)

const sessionIDPrefix = "vc"

// VodafoneCashConfig carries the carrier-specific knobs. The phone rule and
// currency are configuration so the same provider can serve other mobile
// wallet channels and regions.
type VodafoneCashConfig struct {
	ProviderID  string
	DisplayName string
	Currency    string
	Rule        phone.Rule
	DialCode    string
}

// VodafoneCashProvider implements the manual payment lifecycle for an
// Egyptian mobile wallet. All operations are pure bookkeeping; the actual
// funds transfer happens out of band and is confirmed by an admin.
type VodafoneCashProvider struct {
	cfg    VodafoneCashConfig
	logger logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

func NewVodafoneCashProvider(cfg VodafoneCashConfig) *VodafoneCashProvider {
	if cfg.ProviderID == "" {
		cfg.ProviderID = "vodafone-cash"
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = "Vodafone Cash"
	}
	if cfg.Currency == "" {
		cfg.Currency = "EGP"
	}
	if cfg.Rule.Prefix == "" {
		cfg.Rule = phone.Rule{Prefix: "0100", Length: 11}
	}
	if cfg.DialCode == "" {
		cfg.DialCode = "*9#"
	}

	return &VodafoneCashProvider{
		cfg:    cfg,
		logger: factory.NewModuleLogger(cfg.ProviderID + "-provider"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  newSessionID,
	}
}

func (p *VodafoneCashProvider) ID() string {
	return p.cfg.ProviderID
}

func (p *VodafoneCashProvider) Metadata() *Metadata {
	return &Metadata{
		ProviderID:          p.cfg.ProviderID,
		DisplayName:         p.cfg.DisplayName,
		SupportedCurrencies: []string{p.cfg.Currency},
		PhoneFormat:         p.cfg.Rule.Describe(),
	}
}

func (p *VodafoneCashProvider) Initiate(_ context.Context, input *InitiateInput) (*InitiateOutput, error) {
	if input.AmountCents <= 0 {
		return nil, NewError(CodeInvalidAmount,
			"Invalid payment amount",
			"Amount must be a positive number of minor currency units")
	}

	number, err := p.parsePhone(input.PhoneNumber)
	if err != nil {
		return nil, err
	}

	formatted := p.cfg.Rule.Format(number)
	amount := formatAmount(input.AmountCents)

	p.logger.WithFields(logrus.Fields{
		"phone_number": formatted,
		"amount":       amount,
		"currency":     input.Currency,
	}).Info("Manual payment initiated")

	return &InitiateOutput{
		SessionID:      p.newID(),
		PhoneNumber:    number,
		FormattedPhone: formatted,
		Status:         types.SessionStatusPending,
		Instructions: &Instructions{
			Message: fmt.Sprintf("Please send %s %s via %s to: %s",
				amount, input.Currency, p.cfg.DisplayName, formatted),
			Steps: []string{
				fmt.Sprintf("Open your %s app or dial %s", p.cfg.DisplayName, p.cfg.DialCode),
				fmt.Sprintf("Send %s %s to the merchant", amount, input.Currency),
				"Keep your transaction reference number",
				"Your order will be confirmed once payment is verified",
			},
		},
	}, nil
}

// Authorize never auto-approves: a manual payment stays pending until an
// admin verifies the transfer out of band.
func (p *VodafoneCashProvider) Authorize(_ context.Context, input *AuthorizeInput) (*AuthorizeOutput, error) {
	if input.PhoneNumber != "" {
		if _, err := p.parsePhone(input.PhoneNumber); err != nil {
			return nil, err
		}
	}

	return &AuthorizeOutput{
		Status: types.SessionStatusPending,
		Note:   "Payment requires manual verification by admin",
	}, nil
}

func (p *VodafoneCashProvider) Capture(_ context.Context, input *CaptureInput) (*CaptureOutput, error) {
	p.logger.WithField("session_id", input.SessionID).Info("Capturing manual payment")

	return &CaptureOutput{
		Status:     types.SessionStatusCaptured,
		CapturedAt: p.now(),
	}, nil
}

// Refund returns bookkeeping only; the physical refund must be performed
// manually through the wallet channel.
func (p *VodafoneCashProvider) Refund(_ context.Context, input *RefundInput) (*RefundOutput, error) {
	if input.AmountCents <= 0 {
		return nil, NewError(CodeInvalidAmount,
			"Invalid refund amount",
			"Refund amount must be a positive number of minor currency units")
	}

	p.logger.WithFields(logrus.Fields{
		"session_id":   input.SessionID,
		"amount_cents": input.AmountCents,
	}).Info("Refunding manual payment")

	return &RefundOutput{
		RefundedAt: p.now(),
		Note:       fmt.Sprintf("Manual refund - please process through the %s channel", p.cfg.DisplayName),
	}, nil
}

func (p *VodafoneCashProvider) Cancel(_ context.Context, input *CancelInput) (*CancelOutput, error) {
	p.logger.WithField("session_id", input.SessionID).Info("Canceling manual payment")

	return &CancelOutput{
		Status:     types.SessionStatusCanceled,
		CanceledAt: p.now(),
	}, nil
}

func (p *VodafoneCashProvider) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	return &DeleteOutput{SessionID: input.SessionID}, nil
}

func (p *VodafoneCashProvider) Status(_ context.Context, input *StatusInput) types.SessionStatus {
	if input == nil || !input.Status.Valid() {
		return types.SessionStatusPending
	}
	return input.Status
}

func (p *VodafoneCashProvider) Update(_ context.Context, input *UpdateInput) (*UpdateOutput, error) {
	out := &UpdateOutput{UpdatedAt: p.now()}

	if input.PhoneNumber != "" {
		number, err := p.parsePhone(input.PhoneNumber)
		if err != nil {
			return nil, err
		}
		out.PhoneNumber = number
		out.FormattedPhone = p.cfg.Rule.Format(number)
	}

	return out, nil
}

// WebhookAction is a fixed answer: no external system sends webhooks for
// manual cash transfers, so any delivery is acknowledged without effect.
func (p *VodafoneCashProvider) WebhookAction(context.Context, []byte) (*WebhookResult, error) {
	return &WebhookResult{Action: ActionNotSupported}, nil
}

func (p *VodafoneCashProvider) parsePhone(raw string) (phone.Number, error) {
	number, err := p.cfg.Rule.Parse(raw)
	if err == nil {
		return number, nil
	}

	if err == phone.ErrEmpty {
		return "", NewError(CodeMissingPhoneNumber,
			fmt.Sprintf("Phone number is required for %s payment", p.cfg.DisplayName),
			fmt.Sprintf("Please provide a valid %s phone number", p.cfg.DisplayName))
	}
	return "", NewError(CodeInvalidPhoneNumber,
		fmt.Sprintf("Invalid %s phone number", p.cfg.DisplayName),
		fmt.Sprintf("Phone number must start with %s and be exactly %d digits (e.g., %s)",
			p.cfg.Rule.Prefix, p.cfg.Rule.Length, examplePhone(p.cfg.Rule)))
}

// newSessionID combines a millisecond timestamp with a random suffix so
// concurrent initiations never collide.
func newSessionID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%d_%s", sessionIDPrefix, time.Now().UnixMilli(), suffix)
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func examplePhone(rule phone.Rule) string {
	digits := []byte(rule.Prefix)
	for i := 1; len(digits) < rule.Length; i++ {
		digits = append(digits, byte('0'+(i%10)))
	}
	return string(digits)
}
