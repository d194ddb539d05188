package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/factory"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/mapper"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/phone"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/provider"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/service"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
)

// StorefrontController serves the customer-facing surface: provider
// metadata, payment initiation, and session-scoped queries.
type StorefrontController struct {
	sessionService *service.SessionService
	providerReg    *provider.Registry
	providerID     string
	rule           phone.Rule
	currency       string
	logger         logrus.FieldLogger
}

func NewStorefrontController(
	sessionService *service.SessionService,
	providerReg *provider.Registry,
	providerID string,
	rule phone.Rule,
	currency string,
) *StorefrontController {
	return &StorefrontController{
		sessionService: sessionService,
		providerReg:    providerReg,
		providerID:     providerID,
		rule:           rule,
		currency:       currency,
		logger:         factory.NewModuleLogger("storefront-controller"),
	}
}

func (c *StorefrontController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *StorefrontController) GetProviderMetadata(ctx echo.Context) error {
	providerClient, err := c.providerReg.Get(c.providerID)
	if err != nil {
		c.logger.WithError(err).Error("Provider lookup failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	metadata := providerClient.Metadata()
	return ctx.JSON(http.StatusOK, &types.ProviderMetadataResponse{
		Message:             metadata.DisplayName + " payment endpoint",
		ProviderID:          metadata.ProviderID,
		SupportedCurrencies: metadata.SupportedCurrencies,
		PhoneFormat:         metadata.PhoneFormat,
	})
}

func (c *StorefrontController) InitiateSession(ctx echo.Context) error {
	req, err := types.NewInitiateSessionRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if req.Currency == "" {
		req.Currency = c.currency
	}
	if err := req.Validate(c.rule, c.currency); err != nil {
		return writeValidationError(ctx, err)
	}

	result, err := c.sessionService.InitiateSession(ctx.Request().Context(), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Initiate session failed")
	}

	payload := mapper.SessionToPayload(result.Session, c.rule)
	payload.PaymentInstructions = mapper.InstructionsToPayload(result.Instructions, result.FormattedPhone)

	return ctx.JSON(http.StatusCreated, &types.SessionEnvelopeResponse{
		Success: true,
		Data:    payload,
	})
}

func (c *StorefrontController) GetSession(ctx echo.Context) error {
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

func (c *StorefrontController) GetSessionStatus(ctx echo.Context) error {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		return writeError(ctx, http.StatusBadRequest, "payment id is required")
	}

	status, err := c.sessionService.GetSessionStatus(ctx.Request().Context(), id)
	if err != nil {
		return c.writeServiceError(ctx, err, "Get session status failed")
	}

	return ctx.JSON(http.StatusOK, map[string]string{"status": status.String()})
}

func (c *StorefrontController) UpdateSession(ctx echo.Context) error {
	req, err := types.NewUpdateSessionRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeValidationError(ctx, err)
	}

	session, err := c.sessionService.UpdateSession(ctx.Request().Context(), req)
	if err != nil {
		return c.writeServiceError(ctx, err, "Update session failed")
	}

	return ctx.JSON(http.StatusOK, &types.SessionEnvelopeResponse{
		Success: true,
		Data:    mapper.SessionToPayload(session, c.rule),
	})
}

func (c *StorefrontController) DeleteSession(ctx echo.Context) error {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		return writeError(ctx, http.StatusBadRequest, "payment id is required")
	}

	if _, err := c.sessionService.AcknowledgeDelete(ctx.Request().Context(), id, "storefront"); err != nil {
		return c.writeServiceError(ctx, err, "Delete session failed")
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{
		Success: true,
		Message: "Payment session deletion acknowledged",
	})
}

func (c *StorefrontController) writeServiceError(ctx echo.Context, err error, logMessage string) error {
	var providerErr *provider.Error
	switch {
	case errors.As(err, &providerErr):
		return writeProviderError(ctx, providerErr)
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrProviderUnsupported):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		return writeError(ctx, http.StatusNotFound, "payment session not found")
	case errors.Is(err, service.ErrIllegalTransition):
		return writeError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrConcurrentUpdate):
		return writeError(ctx, http.StatusConflict, "payment session was modified concurrently")
	default:
		c.logger.WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}
