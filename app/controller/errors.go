package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/provider"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
)

func writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Success: false, Error: message})
}

func writeValidationError(ctx echo.Context, err error) error {
	var fieldErrs types.FieldErrors
	if errors.As(err, &fieldErrs) {
		return ctx.JSON(http.StatusBadRequest, &types.ValidationErrorResponse{
			Success: false,
			Error:   "Validation failed",
			Details: fieldErrs,
		})
	}
	return writeError(ctx, http.StatusBadRequest, err.Error())
}

func writeProviderError(ctx echo.Context, providerErr *provider.Error) error {
	return ctx.JSON(http.StatusBadRequest, &types.ValidationErrorResponse{
		Success: false,
		Error:   providerErr.Message,
		Details: []types.FieldError{
			{Field: providerErrorField(providerErr.Code), Message: providerErr.Detail},
		},
	})
}

func providerErrorField(code string) string {
	switch code {
	case provider.CodeMissingPhoneNumber, provider.CodeInvalidPhoneNumber:
		return "phone_number"
	case provider.CodeInvalidAmount:
		return "amount_cents"
	default:
		return "request"
	}
}
