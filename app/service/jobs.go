package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/entity"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/mapper"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
)

// RunExpirePendingBatch moves pending sessions past the configured timeout
// into the expired state. Returns how many sessions were expired.
func (s *SessionService) RunExpirePendingBatch(ctx context.Context) (int, error) {
	timeout := s.paymentsCfg.PendingTimeout
	if timeout <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-timeout)
	sessions, err := s.sessionRepo.ListExpiredPending(ctx, int32(types.SessionStatusPending), cutoff, s.batchSize())
	if err != nil {
		return 0, err
	}

	expired := 0
	var firstErr error
	for _, session := range sessions {
		oldStatus := session.Status
		now := time.Now().UTC()
		session.Status = int32(types.SessionStatusExpired)
		s.markForNotify(session, now)
		session.UpdatedAt = now

		if err := s.updateSession(ctx, session); err != nil {
			// A concurrent admin action beat the expiry; skip this one.
			if err == ErrConcurrentUpdate || err == ErrSessionNotFound {
				continue
			}
			s.logger.WithError(err).WithField("session_id", session.ID).Error("Failed to expire pending session")
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		s.recordEvent(ctx, session.ID, "session_expired", nil, &oldStatus, session.Status, nil)
		expired++
	}

	return expired, firstErr
}

// RunDispatchNotificationsBatch delivers status callbacks for sessions whose
// notify state is due. Returns how many callbacks were delivered.
func (s *SessionService) RunDispatchNotificationsBatch(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	sessions, err := s.sessionRepo.ListDueNotify(ctx, now, s.batchSize())
	if err != nil {
		return 0, err
	}

	delivered := 0
	var firstErr error
	for _, session := range sessions {
		if err := s.dispatchNotify(ctx, session); err != nil {
			s.logger.WithError(err).WithField("session_id", session.ID).Warn("Status callback delivery failed")
			s.recordNotifyFailure(ctx, session, err)
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		session.NotifyStatus = entity.NotifySuccess
		session.NotifyNextAt = nil
		session.NotifyLastErr = nil
		session.UpdatedAt = time.Now().UTC()
		if err := s.updateSession(ctx, session); err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		delivered++
	}

	return delivered, firstErr
}

func (s *SessionService) dispatchNotify(ctx context.Context, session *entity.PaymentSession) error {
	if session.StatusCallbackURL == nil || *session.StatusCallbackURL == "" {
		return fmt.Errorf("session %s has no status callback URL", session.ID)
	}

	payload := types.SessionEnvelopeResponse{
		Success: true,
		Data:    mapper.SessionToPayload(session, s.rule),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode callback payload: %w", err)
	}

	_, err = s.notifyBreaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, *session.StatusCallbackURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.notifyHTTP.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("callback endpoint returned status %d", resp.StatusCode)
		}
		return nil, nil
	})

	return err
}

func (s *SessionService) recordNotifyFailure(ctx context.Context, session *entity.PaymentSession, cause error) {
	now := time.Now().UTC()
	session.NotifyAttempts++
	message := cause.Error()
	session.NotifyLastErr = &message

	if session.NotifyAttempts >= s.paymentsCfg.NotifyMaxAttempts {
		session.NotifyStatus = entity.NotifyFailed
		session.NotifyNextAt = nil
	} else {
		next := now.Add(s.paymentsCfg.NotifyRetryInterval)
		session.NotifyNextAt = &next
	}
	session.UpdatedAt = now

	if err := s.updateSession(ctx, session); err != nil {
		s.logger.WithError(err).WithField("session_id", session.ID).Error("Failed to record callback failure")
	}
}

func keepFirstErr(current, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
