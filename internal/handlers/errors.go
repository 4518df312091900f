package handlers

import (
	"errors"
	"net/http"

	"altify/internal/common"
	"altify/internal/services"
	"altify/internal/shopify"

	"github.com/labstack/echo/v4"
)

// sendShopifyError maps a failed Admin API call onto an HTTP response. The
// hint gives the operator something actionable next to the raw message.
func sendShopifyError(c echo.Context, err error) error {
	var apiErr *shopify.APIError
	if !errors.As(err, &apiErr) {
		return common.SendServerError(c, err.Error())
	}

	status := http.StatusBadGateway
	code := "SHOPIFY_ERROR"
	switch apiErr.Kind {
	case shopify.KindAuth:
		status = http.StatusUnauthorized
		code = "SHOPIFY_AUTH"
	case shopify.KindRateLimit:
		status = http.StatusTooManyRequests
		code = "SHOPIFY_RATE_LIMIT"
	case shopify.KindNotFound:
		status = http.StatusNotFound
		code = "SHOPIFY_NOT_FOUND"
	case shopify.KindValidation:
		status = http.StatusUnprocessableEntity
		code = "SHOPIFY_VALIDATION"
	}

	return c.JSON(status, common.CreateErrorResponse(code, apiErr.Message, map[string]string{
		"hint": apiErr.Kind.Hint(),
	}))
}

// sendServiceError routes known sentinel errors to their status codes before
// falling back to the Shopify mapping.
func sendServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return common.SendUnauthorizedError(c)
	case errors.Is(err, services.ErrProductNotFound):
		return common.SendNotFoundError(c, "Product")
	case errors.Is(err, services.ErrTemplateNotFound):
		return common.SendNotFoundError(c, "Template")
	default:
		return sendShopifyError(c, err)
	}
}
