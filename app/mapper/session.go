package mapper

import (
	"time"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/entity"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/phone"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/provider"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
)

// SessionToPayload maps a stored session to its wire shape. The canonical
// phone number is display-formatted through the provider's rule.
func SessionToPayload(item *entity.PaymentSession, rule phone.Rule) *types.Session {
	if item == nil {
		return nil
	}

	return &types.Session{
		ID:                   item.ID,
		ProviderID:           item.ProviderID,
		AmountCents:          item.AmountCents,
		Currency:             item.Currency,
		PhoneNumber:          rule.Format(phone.Number(item.PhoneNumber)),
		CustomerName:         derefString(item.CustomerName),
		Status:               types.SessionStatus(item.Status).String(),
		TransactionReference: derefString(item.TransactionReference),
		AdminNotes:           derefString(item.AdminNotes),
		RefundedCents:        item.RefundedCents,
		CreatedAt:            item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            item.UpdatedAt.UTC().Format(time.RFC3339),
		VerifiedAt:           formatOptionalTime(item.VerifiedAt),
		CapturedAt:           formatOptionalTime(item.CapturedAt),
		CanceledAt:           formatOptionalTime(item.CanceledAt),
		RefundedAt:           formatOptionalTime(item.RefundedAt),
	}
}

func SessionsToPayload(items []*entity.PaymentSession, rule phone.Rule) []*types.Session {
	result := make([]*types.Session, 0, len(items))
	for _, item := range items {
		result = append(result, SessionToPayload(item, rule))
	}
	return result
}

func InstructionsToPayload(instructions *provider.Instructions, formattedPhone string) *types.PaymentInstructions {
	if instructions == nil {
		return nil
	}

	steps := make([]string, len(instructions.Steps))
	copy(steps, instructions.Steps)

	return &types.PaymentInstructions{
		Message:     instructions.Message,
		PhoneNumber: formattedPhone,
		Steps:       steps,
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
