package handlers

import (
	"net/http"
	"strconv"
	"time"

	"altify/internal/common"
	"altify/internal/services"

	"github.com/labstack/echo/v4"
)

// ProductHandlers handles HTTP requests for products and alt text writes
type ProductHandlers struct {
	productService services.ProductService
	mirrorService  services.MirrorService
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductService, mirrorService services.MirrorService) *ProductHandlers {
	return &ProductHandlers{
		productService: productService,
		mirrorService:  mirrorService,
	}
}

// FetchProducts handles POST /products/fetch
// @Summary Fetch the product catalog from the connected store
// @Tags products
// @Produce json
// @Router /products/fetch [post]
func (h *ProductHandlers) FetchProducts(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	products, err := h.productService.Fetch(ctx, sessionID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// ListProducts handles GET /products?q=...&limit=...&offset=...
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	products, err := h.productService.Search(ctx, sessionID, c.QueryParam("q"), limit, offset)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	productID := c.Param("id")
	if productID == "" {
		return common.SendValidationError(c, "id", "product id is required")
	}

	product, err := h.productService.GetByID(ctx, sessionID, productID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// SyncProduct handles POST /products/:id/sync
func (h *ProductHandlers) SyncProduct(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	product, err := h.productService.Sync(ctx, sessionID, c.Param("id"))
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// RecentProducts handles GET /products/recent
func (h *ProductHandlers) RecentProducts(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	products, err := h.productService.RecentProducts(ctx, sessionID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"products": products})
}

// GetCoverage handles GET /dashboard/coverage
func (h *ProductHandlers) GetCoverage(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	report, err := h.productService.Coverage(ctx, sessionID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// ApplyTemplate handles POST /products/:id/apply
func (h *ProductHandlers) ApplyTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	templateID, err := common.ValidateUUID(req.TemplateID, "template_id")
	if err != nil {
		return common.SendValidationError(c, "template_id", err.Error())
	}

	result, err := h.productService.ApplyTemplate(ctx, sessionID, c.Param("id"), templateID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ApplyTemplateAll handles POST /products/apply-all
func (h *ProductHandlers) ApplyTemplateAll(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	templateID, err := common.ValidateUUID(req.TemplateID, "template_id")
	if err != nil {
		return common.SendValidationError(c, "template_id", err.Error())
	}

	results, err := h.productService.ApplyTemplateAll(ctx, sessionID, templateID)
	if err != nil {
		return sendServiceError(c, err)
	}

	totalUpdated := 0
	totalFailed := 0
	for _, result := range results {
		totalUpdated += result.Updated
		totalFailed += result.Failed
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": results,
		"updated": totalUpdated,
		"failed":  totalFailed,
	})
}

// SetImageAlt handles PUT /products/:id/images/:image_id/alt
func (h *ProductHandlers) SetImageAlt(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		AltText string `json:"alt_text"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.productService.SetImageAlt(ctx, sessionID, c.Param("id"), c.Param("image_id"), req.AltText); err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

// ClearImageAlt handles DELETE /products/:id/images/:image_id/alt
// Writes an empty alt text, which removes it on the store.
func (h *ProductHandlers) ClearImageAlt(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.productService.ClearImageAlt(ctx, sessionID, c.Param("id"), c.Param("image_id")); err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}

// ClearProductAlt handles DELETE /products/:id/alt
// Clears the alt text on every image of the product.
func (h *ProductHandlers) ClearProductAlt(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	result, err := h.productService.ClearProductAlt(ctx, sessionID, c.Param("id"))
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetUpdateHistory handles GET /updates?product_id=...
func (h *ProductHandlers) GetUpdateHistory(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	updates, err := h.productService.UpdateHistory(ctx, sessionID, c.QueryParam("product_id"), limit, offset)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"updates": updates,
		"limit":   limit,
		"offset":  offset,
	})
}

// MirrorProduct handles POST /products/:id/mirror
// Copies the product's images into local object storage.
func (h *ProductHandlers) MirrorProduct(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	shopDomain, ok := common.GetShopDomainFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if h.mirrorService == nil {
		return common.SendClientError(c, "Image mirroring is not configured")
	}

	product, err := h.productService.GetByID(ctx, sessionID, c.Param("id"))
	if err != nil {
		return sendServiceError(c, err)
	}

	mirrored, err := h.mirrorService.MirrorProductImages(ctx, shopDomain, product)
	if err != nil {
		return common.SendServerError(c, "Failed to mirror product images")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"product_id": product.ID,
		"mirrored":   mirrored,
		"total":      len(product.Images),
	})
}

// GetMirrorURL handles GET /products/:id/images/:image_id/mirror-url
func (h *ProductHandlers) GetMirrorURL(c echo.Context) error {
	ctx := c.Request().Context()

	shopDomain, ok := common.GetShopDomainFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if h.mirrorService == nil {
		return common.SendClientError(c, "Image mirroring is not configured")
	}

	url, err := h.mirrorService.PresignedImageURL(shopDomain, c.Param("id"), c.Param("image_id"), 15*time.Minute)
	if err != nil {
		return common.SendNotFoundError(c, "Mirrored image")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
