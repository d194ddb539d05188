package controller

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/factory"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/service"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
)

// WebhookController acknowledges provider webhook deliveries. Manual
// channels have no webhook source, so the verdict is always not_supported.
type WebhookController struct {
	sessionService *service.SessionService
	logger         logrus.FieldLogger
}

func NewWebhookController(sessionService *service.SessionService) *WebhookController {
	return &WebhookController{
		sessionService: sessionService,
		logger:         factory.NewModuleLogger("webhook-controller"),
	}
}

func (c *WebhookController) HandleProviderWebhook(ctx echo.Context) error {
	providerID := strings.TrimSpace(ctx.Param("provider"))
	if providerID == "" {
		return writeError(ctx, http.StatusBadRequest, "provider is required")
	}

	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	result, err := c.sessionService.HandleWebhook(ctx.Request().Context(), providerID, payload)
	if err != nil {
		if errors.Is(err, service.ErrProviderUnsupported) {
			return writeError(ctx, http.StatusBadRequest, err.Error())
		}
		c.logger.WithError(err).Error("Handle webhook failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.WebhookActionResponse{Action: result.Action})
}
