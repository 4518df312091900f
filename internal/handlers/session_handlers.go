package handlers

import (
	"net/http"
	"strings"

	"altify/internal/common"
	"altify/internal/services"

	"github.com/labstack/echo/v4"
)

// SessionHandlers handles store connect and disconnect
type SessionHandlers struct {
	sessionService services.SessionService
}

// NewSessionHandlers creates a new session handlers instance
func NewSessionHandlers(sessionService services.SessionService) *SessionHandlers {
	return &SessionHandlers{sessionService: sessionService}
}

// Connect handles POST /connect
// @Summary Connect a Shopify store
// @Description Verifies the shop domain and access token and opens a session
// @Tags sessions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /connect [post]
func (h *SessionHandlers) Connect(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		ShopDomain  string `json:"shop_domain"`
		AccessToken string `json:"access_token"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if strings.TrimSpace(req.ShopDomain) == "" {
		return common.SendValidationError(c, "shop_domain", "shop domain is required")
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return common.SendValidationError(c, "access_token", "access token is required")
	}

	session, token, err := h.sessionService.Connect(ctx, req.ShopDomain, req.AccessToken)
	if err != nil {
		return sendShopifyError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":       token,
		"session_id":  session.ID,
		"shop_domain": session.ShopDomain,
		"shop_name":   session.ShopName,
	})
}

// Disconnect handles POST /disconnect
func (h *SessionHandlers) Disconnect(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.sessionService.Disconnect(ctx, sessionID); err != nil {
		return common.SendServerError(c, "Failed to disconnect session")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "disconnected"})
}

// GetSession handles GET /session
func (h *SessionHandlers) GetSession(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	session, err := h.sessionService.Resolve(ctx, sessionID)
	if err != nil {
		return sendServiceError(c, err)
	}

	// Never echo the access token back out.
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":  session.ID,
		"shop_domain": session.ShopDomain,
		"shop_name":   session.ShopName,
		"created_at":  session.CreatedAt,
	})
}
