package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/factory"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/mapper"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/phone"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/service"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
)

// AdminActorHeader names the admin performing a mutation. The router
// rejects admin requests without it; handlers trust the value.
const AdminActorHeader = "X-Admin-Actor"

// AdminController serves the back-office surface: listing sessions and
// driving the verification, capture, refund, and cancel transitions.
type AdminController struct {
	sessionService *service.SessionService
	rule           phone.Rule
	logger         logrus.FieldLogger
}

func NewAdminController(sessionService *service.SessionService, rule phone.Rule) *AdminController {
	return &AdminController{
		sessionService: sessionService,
		rule:           rule,
		logger:         factory.NewModuleLogger("admin-controller"),
	}
}

// RequireActor rejects admin mutations that do not identify the acting
// admin. Authentication itself happens upstream at the gateway.
func RequireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if strings.TrimSpace(ctx.Request().Header.Get(AdminActorHeader)) == "" {
			return writeError(ctx, http.StatusBadRequest, AdminActorHeader+" header is required")
		}
		return next(ctx)
	}
}

func (c *AdminController) ListSessions(ctx echo.Context) error {
	req, err := types.NewListSessionsRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.sessionService.ListSessions(ctx.Request().Context(), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "List sessions failed")
	}

	payments := mapper.SessionsToPayload(items, c.rule)
	return ctx.JSON(http.StatusOK, &types.ListSessionsResponse{
		Success: true,
		Data: &types.SessionListData{
			Payments: payments,
			Count:    len(payments),
			Limit:    req.Limit,
			Offset:   req.Offset,
		},
	})
}

func (c *AdminController) GetSession(ctx echo.Context) error {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		return writeError(ctx, http.StatusBadRequest, "payment id is required")
	}

	session, err := c.sessionService.GetSession(ctx.Request().Context(), id)
	if err != nil {
		return c.writeServiceError(ctx, err, "Get session failed")
	}

	return ctx.JSON(http.StatusOK, &types.SessionEnvelopeResponse{
		Success: true,
		Data:    mapper.SessionToPayload(session, c.rule),
	})
}

func (c *AdminController) VerifyPayment(ctx echo.Context) error {
	req, err := types.NewVerifyPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeValidationError(ctx, err)
	}

	actor := c.actor(ctx)
	session, err := c.sessionService.VerifySession(ctx.Request().Context(), req, actor)
	if err != nil {
		return c.writeServiceError(ctx, err, "Verify payment failed")
	}

	message := "Payment rejected"
	if req.IsVerified() {
		message = "Payment verified successfully"
	}

	return ctx.JSON(http.StatusOK, &types.VerificationResponse{
		Success: true,
		Message: message,
		Data: &types.VerificationResult{
			PaymentID:            session.ID,
			Status:               types.SessionStatus(session.Status).String(),
			TransactionReference: req.TransactionReference,
			AdminNotes:           req.AdminNotes,
			VerifiedAt:           time.Now().UTC().Format(time.RFC3339),
			VerifiedBy:           actor,
		},
	})
}

func (c *AdminController) UpdateStatus(ctx echo.Context) error {
	req, err := types.NewUpdateStatusRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeValidationError(ctx, err)
	}

	actor := c.actor(ctx)
	session, err := c.sessionService.PatchSessionStatus(ctx.Request().Context(), req, actor)
	if err != nil {
		return c.writeServiceError(ctx, err, "Update status failed")
	}

	return ctx.JSON(http.StatusOK, &types.StatusUpdateResponse{
		Success: true,
		Message: "Payment status updated to " + req.Status,
		Data: &types.StatusUpdateResult{
			PaymentID:  session.ID,
			Status:     types.SessionStatus(session.Status).String(),
			AdminNotes: req.AdminNotes,
			UpdatedAt:  session.UpdatedAt.UTC().Format(time.RFC3339),
			UpdatedBy:  actor,
		},
	})
}

func (c *AdminController) CaptureSession(ctx echo.Context) error {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		return writeError(ctx, http.StatusBadRequest, "payment id is required")
	}

	session, err := c.sessionService.CaptureSession(ctx.Request().Context(), id, c.actor(ctx))
	if err != nil {
		return c.writeServiceError(ctx, err, "Capture session failed")
	}

	return ctx.JSON(http.StatusOK, &types.SessionEnvelopeResponse{
		Success: true,
		Data:    mapper.SessionToPayload(session, c.rule),
	})
}

func (c *AdminController) RefundSession(ctx echo.Context) error {
	req, err := types.NewRefundSessionRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeValidationError(ctx, err)
	}

	session, err := c.sessionService.RefundSession(ctx.Request().Context(), req.SessionID, req.AmountCents, c.actor(ctx), "")
	if err != nil {
		return c.writeServiceError(ctx, err, "Refund session failed")
	}

	return ctx.JSON(http.StatusOK, &types.SessionEnvelopeResponse{
		Success: true,
		Data:    mapper.SessionToPayload(session, c.rule),
	})
}

func (c *AdminController) CancelSession(ctx echo.Context) error {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		return writeError(ctx, http.StatusBadRequest, "payment id is required")
	}

	session, err := c.sessionService.CancelSession(ctx.Request().Context(), id, c.actor(ctx))
	if err != nil {
		return c.writeServiceError(ctx, err, "Cancel session failed")
	}

	return ctx.JSON(http.StatusOK, &types.SessionEnvelopeResponse{
		Success: true,
		Data:    mapper.SessionToPayload(session, c.rule),
	})
}

func (c *AdminController) actor(ctx echo.Context) string {
	return strings.TrimSpace(ctx.Request().Header.Get(AdminActorHeader))
}

func (c *AdminController) writeServiceError(ctx echo.Context, err error, logMessage string) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRefundExceedsBalance):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		return writeError(ctx, http.StatusNotFound, "payment session not found")
	case errors.Is(err, service.ErrIllegalTransition):
		return writeError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrOperationInProgress):
		return writeError(ctx, http.StatusConflict, "operation already in progress")
	case errors.Is(err, service.ErrConcurrentUpdate):
		return writeError(ctx, http.StatusConflict, "payment session was modified concurrently")
	default:
		c.logger.WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}
