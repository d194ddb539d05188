package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/entity"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/factory"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/phone"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/provider"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/repository"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
	"github.com/nilepay-solutions/ms-go-manual-payments/config"
)

const (
	defaultListLimit = int32(50)
	defaultBatchSize = int32(100)
)

type sessionRepository interface {
	Create(ctx context.Context, session *entity.PaymentSession) error
	Update(ctx context.Context, session *entity.PaymentSession) error
	FindByID(ctx context.Context, id string) (*entity.PaymentSession, error)
	List(ctx context.Context, filter repository.SessionFilter) ([]*entity.PaymentSession, error)
	ListExpiredPending(ctx context.Context, pendingStatus int32, cutoff time.Time, limit int32) ([]*entity.PaymentSession, error)
	ListDueNotify(ctx context.Context, now time.Time, limit int32) ([]*entity.PaymentSession, error)
}

type sessionEventRepository interface {
	Create(ctx context.Context, event *entity.SessionEvent) error
}

type verificationRepository interface {
	Create(ctx context.Context, verification *entity.Verification) error
}

type idempotencyStore interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Complete(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

// SessionService owns the payment session state machine. Providers produce
// session data; the service decides which transitions are legal, persists
// the result, and keeps the audit trail.
type SessionService struct {
	sessionRepo      sessionRepository
	eventRepo        sessionEventRepository
	verificationRepo verificationRepository
	providerReg      *provider.Registry
	idemStore        idempotencyStore
	rule             phone.Rule
	defaultProvider  string
	paymentsCfg      config.PaymentsConfig
	notifyHTTP       *http.Client
	notifyBreaker    *gobreaker.CircuitBreaker
	logger           logrus.FieldLogger
}

func NewSessionService(
	sessionRepo sessionRepository,
	eventRepo sessionEventRepository,
	verificationRepo verificationRepository,
	providerReg *provider.Registry,
	idemStore idempotencyStore,
	rule phone.Rule,
	defaultProviderID string,
	paymentsCfg config.PaymentsConfig,
) *SessionService {
	timeout := paymentsCfg.NotifyHTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SessionService{
		sessionRepo:      sessionRepo,
		eventRepo:        eventRepo,
		verificationRepo: verificationRepo,
		providerReg:      providerReg,
		idemStore:        idemStore,
		rule:             rule,
		defaultProvider:  strings.TrimSpace(defaultProviderID),
		paymentsCfg:      paymentsCfg,
		notifyHTTP:       &http.Client{Timeout: timeout},
		notifyBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "notify-dispatch",
		}),
		logger: factory.NewModuleLogger("session-service"),
	}
}

// canTransition is the single source of truth for state-machine legality.
// Captured sessions can only be refunded; every other terminal state is
// final.
func canTransition(from, to types.SessionStatus) bool {
	switch from {
	case types.SessionStatusPending:
		switch to {
		case types.SessionStatusAuthorized,
			types.SessionStatusCanceled,
			types.SessionStatusFailed,
			types.SessionStatusExpired:
			return true
		}
	case types.SessionStatusAuthorized:
		switch to {
		case types.SessionStatusCaptured, types.SessionStatusCanceled:
			return true
		}
	case types.SessionStatusCaptured:
		return to == types.SessionStatusRefunded
	}
	return false
}

func requireTransition(from, to types.SessionStatus) error {
	if !canTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// InitiateResult carries the persisted session together with the one-time
// payment instructions returned to the payer.
type InitiateResult struct {
	Session        *entity.PaymentSession
	Instructions   *provider.Instructions
	FormattedPhone string
}

// InitiateSession drives the provider's initiate and authorize operations
// back to back, the way the checkout flow invokes them, and persists the
// resulting pending session.
func (s *SessionService) InitiateSession(ctx context.Context, req *types.InitiateSessionRequest) (*InitiateResult, error) {
	providerClient, err := s.providerReg.Get(s.defaultProvider)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}

	initiated, err := providerClient.Initiate(ctx, &provider.InitiateInput{
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
		PhoneNumber:  req.PhoneNumber,
		CustomerName: req.CustomerName,
	})
	if err != nil {
		return nil, err
	}

	authorized, err := providerClient.Authorize(ctx, &provider.AuthorizeInput{
		SessionID: initiated.SessionID,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &entity.PaymentSession{
		ID:                initiated.SessionID,
		ProviderID:        providerClient.ID(),
		AmountCents:       req.AmountCents,
		Currency:          req.Currency,
		PhoneNumber:       initiated.PhoneNumber.String(),
		CustomerName:      normalizeOptionalString(req.CustomerName),
		Status:            int32(authorized.Status),
		StatusCallbackURL: normalizeOptionalString(req.StatusCallbackURL),
		NotifyStatus:      entity.NotifyNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, session.ID, "session_initiated", nil, nil, session.Status, map[string]interface{}{
		"authorization_note": authorized.Note,
	})

	return &InitiateResult{
		Session:        session,
		Instructions:   initiated.Instructions,
		FormattedPhone: initiated.FormattedPhone,
	}, nil
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*entity.PaymentSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetSessionStatus answers the provider's status query for a stored
// session, defaulting to pending when the stored value is unusable.
func (s *SessionService) GetSessionStatus(ctx context.Context, id string) (types.SessionStatus, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return types.SessionStatusUnspecified, err
	}

	providerClient, err := s.providerReg.Get(session.ProviderID)
	if err != nil {
		return types.SessionStatusUnspecified, err
	}

	return providerClient.Status(ctx, &provider.StatusInput{
		Status: types.SessionStatus(session.Status),
	}), nil
}

func (s *SessionService) ListSessions(ctx context.Context, req *types.ListSessionsRequest) ([]*entity.PaymentSession, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	filter := repository.SessionFilter{
		Limit:  limit,
		Offset: req.Offset,
	}
	if req.HasStatus {
		status, ok := types.ParseSessionStatus(req.Status)
		if !ok {
			return nil, ErrInvalidRequest
		}
		filter.HasStatus = true
		filter.Status = int32(status)
	}

	return s.sessionRepo.List(ctx, filter)
}

// VerifySession applies an admin's verification decision. The acting admin
// is an explicit parameter; there is no implicit "admin" identity.
func (s *SessionService) VerifySession(ctx context.Context, req *types.VerifyPaymentRequest, actor string) (*entity.PaymentSession, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrInvalidRequest)
	}

	session, err := s.GetSession(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	target := types.SessionStatusFailed
	eventType := "payment_rejected"
	if req.IsVerified() {
		target = types.SessionStatusAuthorized
		eventType = "payment_verified"
	}

	oldStatus := session.Status
	if err := requireTransition(types.SessionStatus(oldStatus), target); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session.Status = int32(target)
	if req.IsVerified() {
		session.VerifiedAt = &now
	}
	if req.TransactionReference != "" {
		session.TransactionReference = normalizeOptionalString(req.TransactionReference)
	}
	mergeAdminNotes(session, req.AdminNotes)
	s.markForNotify(session, now)
	session.UpdatedAt = now

	if err := s.updateSession(ctx, session); err != nil {
		return nil, err
	}

	_ = s.verificationRepo.Create(ctx, &entity.Verification{
		SessionID:            session.ID,
		Actor:                actor,
		Verified:             req.IsVerified(),
		TransactionReference: normalizeOptionalString(req.TransactionReference),
		Notes:                normalizeOptionalString(req.AdminNotes),
		CreatedAt:            now,
	})

	s.recordEvent(ctx, session.ID, eventType, &actor, &oldStatus, session.Status, nil)

	return session, nil
}

// CaptureSession finalizes a verified payment. The Redis in-progress guard
// plus the repository's version check guarantee that exactly one of two
// concurrent captures takes effect.
func (s *SessionService) CaptureSession(ctx context.Context, id, actor string) (*entity.PaymentSession, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := session.Status
	if err := requireTransition(types.SessionStatus(oldStatus), types.SessionStatusCaptured); err != nil {
		return nil, err
	}

	key := "capture:" + session.ID
	acquired, err := s.idemStore.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrOperationInProgress
	}

	providerClient, err := s.providerReg.Get(session.ProviderID)
	if err != nil {
		s.releaseQuietly(ctx, key)
		return nil, err
	}

	captured, err := providerClient.Capture(ctx, &provider.CaptureInput{SessionID: session.ID})
	if err != nil {
		s.releaseQuietly(ctx, key)
		return nil, err
	}

	now := time.Now().UTC()
	session.Status = int32(captured.Status)
	capturedAt := captured.CapturedAt
	session.CapturedAt = &capturedAt
	s.markForNotify(session, now)
	session.UpdatedAt = now

	if err := s.updateSession(ctx, session); err != nil {
		s.releaseQuietly(ctx, key)
		return nil, err
	}

	if err := s.idemStore.Complete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("session_id", session.ID).Warn("Failed to mark capture completed")
	}

	s.recordEvent(ctx, session.ID, "session_captured", &actor, &oldStatus, session.Status, nil)

	return session, nil
}

// RefundSession records refund bookkeeping for a captured payment; the
// physical refund happens manually through the payment channel.
func (s *SessionService) RefundSession(ctx context.Context, id string, amountCents int64, actor, notes string) (*entity.PaymentSession, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := session.Status
	if err := requireTransition(types.SessionStatus(oldStatus), types.SessionStatusRefunded); err != nil {
		return nil, err
	}
	if amountCents > session.AmountCents-session.RefundedCents {
		return nil, ErrRefundExceedsBalance
	}

	key := "refund:" + session.ID
	acquired, err := s.idemStore.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrOperationInProgress
	}

	providerClient, err := s.providerReg.Get(session.ProviderID)
	if err != nil {
		s.releaseQuietly(ctx, key)
		return nil, err
	}

	refunded, err := providerClient.Refund(ctx, &provider.RefundInput{
		SessionID:   session.ID,
		AmountCents: amountCents,
	})
	if err != nil {
		s.releaseQuietly(ctx, key)
		return nil, err
	}

	now := time.Now().UTC()
	session.Status = int32(types.SessionStatusRefunded)
	session.RefundedCents += amountCents
	refundedAt := refunded.RefundedAt
	session.RefundedAt = &refundedAt
	mergeAdminNotes(session, notes)
	s.markForNotify(session, now)
	session.UpdatedAt = now

	if err := s.updateSession(ctx, session); err != nil {
		s.releaseQuietly(ctx, key)
		return nil, err
	}

	if err := s.idemStore.Complete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("session_id", session.ID).Warn("Failed to mark refund completed")
	}

	s.recordEvent(ctx, session.ID, "session_refunded", &actor, &oldStatus, session.Status, map[string]interface{}{
		"refund_amount_cents": amountCents,
		"refund_note":         refunded.Note,
	})

	return session, nil
}

func (s *SessionService) CancelSession(ctx context.Context, id, actor string) (*entity.PaymentSession, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := session.Status
	if err := requireTransition(types.SessionStatus(oldStatus), types.SessionStatusCanceled); err != nil {
		return nil, err
	}

	providerClient, err := s.providerReg.Get(session.ProviderID)
	if err != nil {
		return nil, err
	}

	canceled, err := providerClient.Cancel(ctx, &provider.CancelInput{SessionID: session.ID})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session.Status = int32(canceled.Status)
	canceledAt := canceled.CanceledAt
	session.CanceledAt = &canceledAt
	s.markForNotify(session, now)
	session.UpdatedAt = now

	if err := s.updateSession(ctx, session); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, session.ID, "session_canceled", &actor, &oldStatus, session.Status, nil)

	return session, nil
}

// UpdateSession merges a patch into a live session. A new phone number is
// re-validated and re-canonicalized by the provider before being stored.
func (s *SessionService) UpdateSession(ctx context.Context, req *types.UpdateSessionRequest) (*entity.PaymentSession, error) {
	session, err := s.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if types.SessionStatus(session.Status).Terminal() {
		return nil, fmt.Errorf("%w: session is in terminal state %s",
			ErrIllegalTransition, types.SessionStatus(session.Status))
	}

	providerClient, err := s.providerReg.Get(session.ProviderID)
	if err != nil {
		return nil, err
	}

	updated, err := providerClient.Update(ctx, &provider.UpdateInput{
		SessionID:    session.ID,
		PhoneNumber:  req.PhoneNumber,
		CustomerName: req.CustomerName,
	})
	if err != nil {
		return nil, err
	}

	if updated.PhoneNumber != "" {
		session.PhoneNumber = updated.PhoneNumber.String()
	}
	if req.CustomerName != "" {
		session.CustomerName = normalizeOptionalString(req.CustomerName)
	}
	session.UpdatedAt = updated.UpdatedAt

	if err := s.updateSession(ctx, session); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, session.ID, "session_updated", nil, nil, session.Status, nil)

	return session, nil
}

// PatchSessionStatus applies the admin status vocabulary: verified maps to
// authorized, refunded performs a full refund of the remaining balance, and
// pending is only a notes update on a still-pending session.
func (s *SessionService) PatchSessionStatus(ctx context.Context, req *types.UpdateStatusRequest, actor string) (*entity.PaymentSession, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrInvalidRequest)
	}

	target, ok := types.ParseAdminStatus(req.Status)
	if !ok {
		return nil, ErrInvalidRequest
	}

	switch target {
	case types.SessionStatusAuthorized:
		verified := true
		return s.VerifySession(ctx, &types.VerifyPaymentRequest{
			PaymentID:  req.PaymentID,
			Verified:   &verified,
			AdminNotes: req.AdminNotes,
		}, actor)
	case types.SessionStatusFailed:
		verified := false
		return s.VerifySession(ctx, &types.VerifyPaymentRequest{
			PaymentID:  req.PaymentID,
			Verified:   &verified,
			AdminNotes: req.AdminNotes,
		}, actor)
	case types.SessionStatusCanceled:
		session, err := s.CancelSession(ctx, req.PaymentID, actor)
		if err != nil {
			return nil, err
		}
		return s.appendNotes(ctx, session, req.AdminNotes)
	case types.SessionStatusRefunded:
		session, err := s.GetSession(ctx, req.PaymentID)
		if err != nil {
			return nil, err
		}
		remaining := session.AmountCents - session.RefundedCents
		return s.RefundSession(ctx, req.PaymentID, remaining, actor, req.AdminNotes)
	case types.SessionStatusPending:
		session, err := s.GetSession(ctx, req.PaymentID)
		if err != nil {
			return nil, err
		}
		if types.SessionStatus(session.Status) != types.SessionStatusPending {
			return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition,
				types.SessionStatus(session.Status), types.SessionStatusPending)
		}
		return s.appendNotes(ctx, session, req.AdminNotes)
	default:
		return nil, ErrInvalidRequest
	}
}

// AcknowledgeDelete echoes the session back; physical deletion belongs to
// the owning order subsystem.
func (s *SessionService) AcknowledgeDelete(ctx context.Context, id, actor string) (*entity.PaymentSession, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	providerClient, err := s.providerReg.Get(session.ProviderID)
	if err != nil {
		return nil, err
	}

	if _, err := providerClient.Delete(ctx, &provider.DeleteInput{SessionID: session.ID}); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, session.ID, "session_delete_acknowledged", &actor, nil, session.Status, nil)

	return session, nil
}

// HandleWebhook resolves the provider and returns its webhook verdict. For
// manual channels the verdict is always not_supported.
func (s *SessionService) HandleWebhook(ctx context.Context, providerID string, payload []byte) (*provider.WebhookResult, error) {
	providerClient, err := s.providerReg.Get(providerID)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}

	return providerClient.WebhookAction(ctx, payload)
}

func (s *SessionService) appendNotes(ctx context.Context, session *entity.PaymentSession, notes string) (*entity.PaymentSession, error) {
	if strings.TrimSpace(notes) == "" {
		return session, nil
	}

	now := time.Now().UTC()
	mergeAdminNotes(session, notes)
	session.UpdatedAt = now

	if err := s.updateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) updateSession(ctx context.Context, session *entity.PaymentSession) error {
	err := s.sessionRepo.Update(ctx, session)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, repository.ErrStaleSession):
		return ErrConcurrentUpdate
	default:
		return err
	}
}

func (s *SessionService) markForNotify(session *entity.PaymentSession, now time.Time) {
	if session.StatusCallbackURL == nil || strings.TrimSpace(*session.StatusCallbackURL) == "" {
		return
	}
	session.NotifyStatus = entity.NotifyPending
	session.NotifyAttempts = 0
	session.NotifyNextAt = &now
	session.NotifyLastErr = nil
}

func (s *SessionService) recordEvent(
	ctx context.Context,
	sessionID, eventType string,
	actor *string,
	oldStatus *int32,
	newStatus int32,
	payload map[string]interface{},
) {
	event := &entity.SessionEvent{
		SessionID: sessionID,
		EventType: eventType,
		Actor:     actor,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		CreatedAt: time.Now().UTC(),
	}
	if len(payload) > 0 {
		if raw, err := json.Marshal(payload); err == nil {
			payloadJSON := string(raw)
			event.PayloadJSON = &payloadJSON
		}
	}
	_ = s.eventRepo.Create(ctx, event)
}

func (s *SessionService) releaseQuietly(ctx context.Context, key string) {
	if err := s.idemStore.Release(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to release idempotency key")
	}
}

func (s *SessionService) batchSize() int32 {
	if s.paymentsCfg.JobBatchSize > 0 {
		return s.paymentsCfg.JobBatchSize
	}
	return defaultBatchSize
}

func mergeAdminNotes(session *entity.PaymentSession, notes string) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return
	}
	if session.AdminNotes == nil || *session.AdminNotes == "" {
		session.AdminNotes = &notes
		return
	}
	merged := *session.AdminNotes + "\n" + notes
	session.AdminNotes = &merged
}

func normalizeOptionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
