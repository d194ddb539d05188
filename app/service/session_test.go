package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/entity"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/phone"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/provider"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/repository"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
	"github.com/nilepay-solutions/ms-go-manual-payments/config"
)

type serviceSessionRepo struct {
	sessions map[string]*entity.PaymentSession
	// staleNextUpdate makes the next Update report a lost version race.
	staleNextUpdate bool
}

func newServiceSessionRepo() *serviceSessionRepo {
	return &serviceSessionRepo{sessions: map[string]*entity.PaymentSession{}}
}

func (r *serviceSessionRepo) Create(_ context.Context, session *entity.PaymentSession) error {
	if _, ok := r.sessions[session.ID]; ok {
		return repository.ErrSessionExists
	}
	copyItem := *session
	r.sessions[session.ID] = &copyItem
	return nil
}

func (r *serviceSessionRepo) Update(_ context.Context, session *entity.PaymentSession) error {
	stored, ok := r.sessions[session.ID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	if r.staleNextUpdate || stored.Version != session.Version {
		r.staleNextUpdate = false
		return repository.ErrStaleSession
	}
	copyItem := *session
	copyItem.Version = session.Version + 1
	r.sessions[session.ID] = &copyItem
	session.Version = copyItem.Version
	return nil
}

func (r *serviceSessionRepo) FindByID(_ context.Context, id string) (*entity.PaymentSession, error) {
	item, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *serviceSessionRepo) List(_ context.Context, filter repository.SessionFilter) ([]*entity.PaymentSession, error) {
	items := make([]*entity.PaymentSession, 0)
	for _, item := range r.sessions {
		if filter.ProviderID != "" && item.ProviderID != filter.ProviderID {
			continue
		}
		if filter.HasStatus && item.Status != filter.Status {
			continue
		}
		copyItem := *item
		items = append(items, &copyItem)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	start := int(filter.Offset)
	if start > len(items) {
		return []*entity.PaymentSession{}, nil
	}
	end := start + int(filter.Limit)
	if filter.Limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}

func (r *serviceSessionRepo) ListExpiredPending(_ context.Context, pendingStatus int32, cutoff time.Time, limit int32) ([]*entity.PaymentSession, error) {
	items := make([]*entity.PaymentSession, 0)
	for _, item := range r.sessions {
		if item.Status == pendingStatus && !item.CreatedAt.After(cutoff) {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	return limitSessions(items, limit), nil
}

func (r *serviceSessionRepo) ListDueNotify(_ context.Context, now time.Time, limit int32) ([]*entity.PaymentSession, error) {
	items := make([]*entity.PaymentSession, 0)
	for _, item := range r.sessions {
		if item.NotifyStatus == entity.NotifyPending && item.NotifyNextAt != nil && !item.NotifyNextAt.After(now) {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	return limitSessions(items, limit), nil
}

func limitSessions(items []*entity.PaymentSession, limit int32) []*entity.PaymentSession {
	if limit <= 0 || int(limit) >= len(items) {
		return items
	}
	return items[:limit]
}

type serviceEventRepo struct {
	events []*entity.SessionEvent
}

func (r *serviceEventRepo) Create(_ context.Context, event *entity.SessionEvent) error {
	copyItem := *event
	r.events = append(r.events, &copyItem)
	return nil
}

func (r *serviceEventRepo) lastEventType() string {
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1].EventType
}

type serviceVerificationRepo struct {
	verifications []*entity.Verification
}

func (r *serviceVerificationRepo) Create(_ context.Context, verification *entity.Verification) error {
	copyItem := *verification
	r.verifications = append(r.verifications, &copyItem)
	return nil
}

type serviceIdemStore struct {
	states map[string]string
}

func newServiceIdemStore() *serviceIdemStore {
	return &serviceIdemStore{states: map[string]string{}}
}

func (s *serviceIdemStore) Acquire(_ context.Context, key string) (bool, error) {
	if _, ok := s.states[key]; ok {
		return false, nil
	}
	s.states[key] = "in_progress"
	return true, nil
}

func (s *serviceIdemStore) Complete(_ context.Context, key string) error {
	s.states[key] = "completed"
	return nil
}

func (s *serviceIdemStore) Release(_ context.Context, key string) error {
	delete(s.states, key)
	return nil
}

type serviceFixture struct {
	svc              *SessionService
	sessionRepo      *serviceSessionRepo
	eventRepo        *serviceEventRepo
	verificationRepo *serviceVerificationRepo
	idemStore        *serviceIdemStore
}

func newServiceFixture() *serviceFixture {
	sessionRepo := newServiceSessionRepo()
	eventRepo := &serviceEventRepo{}
	verificationRepo := &serviceVerificationRepo{}
	idemStore := newServiceIdemStore()

	vodafoneCash := provider.NewVodafoneCashProvider(provider.VodafoneCashConfig{})
	svc := NewSessionService(
		sessionRepo,
		eventRepo,
		verificationRepo,
		provider.NewRegistry(vodafoneCash),
		idemStore,
		phone.Rule{Prefix: "0100", Length: 11},
		"vodafone-cash",
		config.PaymentsConfig{
			NotifyMaxAttempts:   3,
			NotifyRetryInterval: time.Minute,
			NotifyHTTPTimeout:   time.Second,
			PendingTimeout:      time.Minute,
			JobBatchSize:        100,
		},
	)

	return &serviceFixture{
		svc:              svc,
		sessionRepo:      sessionRepo,
		eventRepo:        eventRepo,
		verificationRepo: verificationRepo,
		idemStore:        idemStore,
	}
}

func (f *serviceFixture) seedSession(t *testing.T, status types.SessionStatus) *entity.PaymentSession {
	t.Helper()
	now := time.Now().UTC().Add(-time.Hour)
	callbackURL := "https://shop.example/payment-status"
	session := &entity.PaymentSession{
		ID:                "vc_1700000000000_seed1",
		ProviderID:        "vodafone-cash",
		AmountCents:       25000,
		Currency:          "EGP",
		PhoneNumber:       "01001234567",
		Status:            int32(status),
		StatusCallbackURL: &callbackURL,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := f.sessionRepo.Create(context.Background(), session); err != nil {
		t.Fatalf("seed session failed: %v", err)
	}
	return session
}

func TestInitiateSessionPersistsPendingSession(t *testing.T) {
	f := newServiceFixture()

	result, err := f.svc.InitiateSession(context.Background(), &types.InitiateSessionRequest{
		PhoneNumber:       "0100 123 4567",
		CustomerName:      "Omar Hassan",
		AmountCents:       25000,
		Currency:          "EGP",
		StatusCallbackURL: "https://shop.example/payment-status",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	if result.Session.Status != int32(types.SessionStatusPending) {
		t.Fatalf("expected pending status, got %d", result.Session.Status)
	}
	if result.Session.PhoneNumber != "01001234567" {
		t.Fatalf("expected canonical phone, got %q", result.Session.PhoneNumber)
	}
	if result.Instructions == nil || len(result.Instructions.Steps) != 4 {
		t.Fatalf("expected 4 instruction steps, got %+v", result.Instructions)
	}
	if result.FormattedPhone != "0100 123 4567" {
		t.Fatalf("expected formatted phone, got %q", result.FormattedPhone)
	}

	stored, _ := f.sessionRepo.FindByID(context.Background(), result.Session.ID)
	if stored == nil {
		t.Fatal("expected session to be persisted")
	}
	if stored.NotifyStatus != entity.NotifyNone {
		t.Fatalf("initiation must not trigger a status callback, got %d", stored.NotifyStatus)
	}
	if f.eventRepo.lastEventType() != "session_initiated" {
		t.Fatalf("expected session_initiated event, got %q", f.eventRepo.lastEventType())
	}
}

func TestInitiateSessionInvalidPhonePropagatesProviderError(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.InitiateSession(context.Background(), &types.InitiateSessionRequest{
		PhoneNumber: "01101234567",
		AmountCents: 100,
		Currency:    "EGP",
	})
	var providerErr *provider.Error
	if !errors.As(err, &providerErr) || providerErr.Code != provider.CodeInvalidPhoneNumber {
		t.Fatalf("expected invalid phone provider error, got %v", err)
	}
	if len(f.sessionRepo.sessions) != 0 {
		t.Fatal("failed initiation must not persist a session")
	}
}

func TestVerifySessionApprovesToAuthorized(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusPending)

	verified := true
	session, err := f.svc.VerifySession(context.Background(), &types.VerifyPaymentRequest{
		PaymentID:            seeded.ID,
		TransactionReference: "TXN-100",
		Verified:             &verified,
		AdminNotes:           "confirmed against wallet statement",
	}, "admin@shop.example")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if session.Status != int32(types.SessionStatusAuthorized) {
		t.Fatalf("expected authorized, got %d", session.Status)
	}
	if session.VerifiedAt == nil {
		t.Fatal("expected verified timestamp")
	}
	if session.TransactionReference == nil || *session.TransactionReference != "TXN-100" {
		t.Fatalf("expected transaction reference, got %v", session.TransactionReference)
	}
	if session.NotifyStatus != entity.NotifyPending {
		t.Fatalf("expected notify pending, got %d", session.NotifyStatus)
	}

	if len(f.verificationRepo.verifications) != 1 {
		t.Fatalf("expected verification record, got %d", len(f.verificationRepo.verifications))
	}
	record := f.verificationRepo.verifications[0]
	if record.Actor != "admin@shop.example" || !record.Verified {
		t.Fatalf("unexpected verification record %+v", record)
	}
	if f.eventRepo.lastEventType() != "payment_verified" {
		t.Fatalf("expected payment_verified event, got %q", f.eventRepo.lastEventType())
	}
}

func TestVerifySessionRejectsToFailed(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusPending)

	verified := false
	session, err := f.svc.VerifySession(context.Background(), &types.VerifyPaymentRequest{
		PaymentID: seeded.ID,
		Verified:  &verified,
	}, "admin@shop.example")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if session.Status != int32(types.SessionStatusFailed) {
		t.Fatalf("expected failed, got %d", session.Status)
	}
	if session.VerifiedAt != nil {
		t.Fatal("rejected payment must not carry a verified timestamp")
	}
	if f.eventRepo.lastEventType() != "payment_rejected" {
		t.Fatalf("expected payment_rejected event, got %q", f.eventRepo.lastEventType())
	}
}

func TestVerifySessionRequiresActor(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusPending)

	verified := true
	_, err := f.svc.VerifySession(context.Background(), &types.VerifyPaymentRequest{
		PaymentID: seeded.ID,
		Verified:  &verified,
	}, "  ")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestVerifySessionOnAuthorizedIsIllegal(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusAuthorized)

	verified := true
	_, err := f.svc.VerifySession(context.Background(), &types.VerifyPaymentRequest{
		PaymentID: seeded.ID,
		Verified:  &verified,
	}, "admin@shop.example")
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestCaptureSessionRequiresAuthorized(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusPending)

	_, err := f.svc.CaptureSession(context.Background(), seeded.ID, "admin@shop.example")
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestCaptureSessionSucceedsFromAuthorized(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusAuthorized)

	session, err := f.svc.CaptureSession(context.Background(), seeded.ID, "admin@shop.example")
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	if session.Status != int32(types.SessionStatusCaptured) {
		t.Fatalf("expected captured, got %d", session.Status)
	}
	if session.CapturedAt == nil {
		t.Fatal("expected captured timestamp")
	}
	if f.idemStore.states["capture:"+seeded.ID] != "completed" {
		t.Fatalf("expected completed idempotency key, got %q", f.idemStore.states["capture:"+seeded.ID])
	}
}

func TestCaptureSessionConcurrentDuplicateIsRejected(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusAuthorized)

	// Simulate another worker holding the capture claim.
	if _, err := f.idemStore.Acquire(context.Background(), "capture:"+seeded.ID); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	_, err := f.svc.CaptureSession(context.Background(), seeded.ID, "admin@shop.example")
	if !errors.Is(err, ErrOperationInProgress) {
		t.Fatalf("expected ErrOperationInProgress, got %v", err)
	}
}

func TestCaptureSessionLostVersionRaceReleasesClaim(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusAuthorized)
	f.sessionRepo.staleNextUpdate = true

	_, err := f.svc.CaptureSession(context.Background(), seeded.ID, "admin@shop.example")
	if !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
	}
	if _, held := f.idemStore.states["capture:"+seeded.ID]; held {
		t.Fatal("expected idempotency claim to be released after lost race")
	}
}

func TestRefundSessionRequiresCaptured(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusAuthorized)

	_, err := f.svc.RefundSession(context.Background(), seeded.ID, 100, "admin@shop.example", "")
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestRefundSessionBoundsAmount(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusCaptured)

	_, err := f.svc.RefundSession(context.Background(), seeded.ID, seeded.AmountCents+1, "admin@shop.example", "")
	if !errors.Is(err, ErrRefundExceedsBalance) {
		t.Fatalf("expected ErrRefundExceedsBalance, got %v", err)
	}
}

func TestRefundSessionRecordsBookkeeping(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusCaptured)

	session, err := f.svc.RefundSession(context.Background(), seeded.ID, 10000, "admin@shop.example", "customer returned order")
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	if session.Status != int32(types.SessionStatusRefunded) {
		t.Fatalf("expected refunded, got %d", session.Status)
	}
	if session.RefundedCents != 10000 {
		t.Fatalf("expected 10000 refunded cents, got %d", session.RefundedCents)
	}
	if session.RefundedAt == nil {
		t.Fatal("expected refunded timestamp")
	}
	if session.AdminNotes == nil || *session.AdminNotes != "customer returned order" {
		t.Fatalf("expected admin notes, got %v", session.AdminNotes)
	}

	// Refunded is terminal; a second refund is an illegal transition.
	_, err = f.svc.RefundSession(context.Background(), seeded.ID, 5000, "admin@shop.example", "")
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition on second refund, got %v", err)
	}
}

func TestCancelSessionFromPendingAndAuthorized(t *testing.T) {
	for _, status := range []types.SessionStatus{types.SessionStatusPending, types.SessionStatusAuthorized} {
		f := newServiceFixture()
		seeded := f.seedSession(t, status)

		session, err := f.svc.CancelSession(context.Background(), seeded.ID, "admin@shop.example")
		if err != nil {
			t.Fatalf("cancel from %s failed: %v", status, err)
		}
		if session.Status != int32(types.SessionStatusCanceled) {
			t.Fatalf("expected canceled, got %d", session.Status)
		}
		if session.CanceledAt == nil {
			t.Fatal("expected canceled timestamp")
		}
	}
}

func TestCancelSessionAfterCaptureIsIllegal(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusCaptured)

	_, err := f.svc.CancelSession(context.Background(), seeded.ID, "admin@shop.example")
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestUpdateSessionRevalidatesPhone(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusPending)

	session, err := f.svc.UpdateSession(context.Background(), &types.UpdateSessionRequest{
		SessionID:    seeded.ID,
		PhoneNumber:  "0100-987-6543",
		CustomerName: "Mona Adel",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if session.PhoneNumber != "01009876543" {
		t.Fatalf("expected canonical phone, got %q", session.PhoneNumber)
	}
	if session.CustomerName == nil || *session.CustomerName != "Mona Adel" {
		t.Fatalf("expected customer name, got %v", session.CustomerName)
	}
}

func TestUpdateSessionTerminalIsRejected(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusCaptured)

	_, err := f.svc.UpdateSession(context.Background(), &types.UpdateSessionRequest{
		SessionID:   seeded.ID,
		PhoneNumber: "01009876543",
	})
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestPatchSessionStatusVerified(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusPending)

	session, err := f.svc.PatchSessionStatus(context.Background(), &types.UpdateStatusRequest{
		PaymentID: seeded.ID,
		Status:    "verified",
	}, "admin@shop.example")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if session.Status != int32(types.SessionStatusAuthorized) {
		t.Fatalf("expected authorized, got %d", session.Status)
	}
}

func TestPatchSessionStatusRefundedRefundsRemainingBalance(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusCaptured)

	session, err := f.svc.PatchSessionStatus(context.Background(), &types.UpdateStatusRequest{
		PaymentID: seeded.ID,
		Status:    "refunded",
	}, "admin@shop.example")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if session.Status != int32(types.SessionStatusRefunded) {
		t.Fatalf("expected refunded, got %d", session.Status)
	}
	if session.RefundedCents != seeded.AmountCents {
		t.Fatalf("expected full refund of %d, got %d", seeded.AmountCents, session.RefundedCents)
	}
}

func TestPatchSessionStatusPendingOnlyUpdatesNotes(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusPending)

	session, err := f.svc.PatchSessionStatus(context.Background(), &types.UpdateStatusRequest{
		PaymentID:  seeded.ID,
		Status:     "pending",
		AdminNotes: "waiting for customer transfer",
	}, "admin@shop.example")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if session.Status != int32(types.SessionStatusPending) {
		t.Fatalf("expected pending, got %d", session.Status)
	}
	if session.AdminNotes == nil || *session.AdminNotes != "waiting for customer transfer" {
		t.Fatalf("expected admin notes, got %v", session.AdminNotes)
	}
}

func TestPatchSessionStatusPendingOnAuthorizedIsIllegal(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusAuthorized)

	_, err := f.svc.PatchSessionStatus(context.Background(), &types.UpdateStatusRequest{
		PaymentID: seeded.ID,
		Status:    "pending",
	}, "admin@shop.example")
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestGetSessionStatusPassesThroughStoredStatus(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusCaptured)

	status, err := f.svc.GetSessionStatus(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status != types.SessionStatusCaptured {
		t.Fatalf("expected captured, got %s", status)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.GetSession(context.Background(), "vc_missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAcknowledgeDeleteLeavesSessionIntact(t *testing.T) {
	f := newServiceFixture()
	seeded := f.seedSession(t, types.SessionStatusPending)

	if _, err := f.svc.AcknowledgeDelete(context.Background(), seeded.ID, "storefront"); err != nil {
		t.Fatalf("delete ack failed: %v", err)
	}

	stored, _ := f.sessionRepo.FindByID(context.Background(), seeded.ID)
	if stored == nil {
		t.Fatal("delete must not remove the session")
	}
	if f.eventRepo.lastEventType() != "session_delete_acknowledged" {
		t.Fatalf("expected delete ack event, got %q", f.eventRepo.lastEventType())
	}
}

func TestHandleWebhookAlwaysNotSupported(t *testing.T) {
	f := newServiceFixture()

	result, err := f.svc.HandleWebhook(context.Background(), "vodafone-cash", []byte(`{"event":"anything"}`))
	if err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if result.Action != provider.ActionNotSupported {
		t.Fatalf("expected not_supported, got %q", result.Action)
	}
}

func TestHandleWebhookUnknownProvider(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.HandleWebhook(context.Background(), "stripe", nil)
	if !errors.Is(err, ErrProviderUnsupported) {
		t.Fatalf("expected ErrProviderUnsupported, got %v", err)
	}
}

func TestListSessionsFiltersByStatus(t *testing.T) {
	f := newServiceFixture()
	f.seedSession(t, types.SessionStatusPending)

	items, err := f.svc.ListSessions(context.Background(), &types.ListSessionsRequest{
		Status:    "pending",
		HasStatus: true,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 session, got %d", len(items))
	}

	items, err = f.svc.ListSessions(context.Background(), &types.ListSessionsRequest{
		Status:    "captured",
		HasStatus: true,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected 0 sessions, got %d", len(items))
	}
}
