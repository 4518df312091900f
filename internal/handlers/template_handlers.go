package handlers

import (
	"net/http"
	"strconv"

	"altify/internal/common"
	"altify/internal/services"

	"github.com/labstack/echo/v4"
)

// TemplateHandlers handles HTTP requests for alt text templates
type TemplateHandlers struct {
	templateService services.TemplateService
	productService  services.ProductService
}

// NewTemplateHandlers creates a new template handlers instance
func NewTemplateHandlers(templateService services.TemplateService, productService services.ProductService) *TemplateHandlers {
	return &TemplateHandlers{
		templateService: templateService,
		productService:  productService,
	}
}

// CreateTemplate handles POST /templates
// @Summary Create an alt text template
// @Tags templates
// @Accept json
// @Produce json
// @Success 201 {object} models.Template
// @Router /templates [post]
func (h *TemplateHandlers) CreateTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	shopDomain, ok := common.GetShopDomainFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Name string `json:"name"`
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateRequiredString(req.Body, "body"); err != nil {
		return common.SendValidationError(c, "body", err.Error())
	}

	template, err := h.templateService.Create(ctx, shopDomain, req.Name, req.Body)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, template)
}

// ListTemplates handles GET /templates
func (h *TemplateHandlers) ListTemplates(c echo.Context) error {
	ctx := c.Request().Context()

	shopDomain, ok := common.GetShopDomainFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	templates, err := h.templateService.List(ctx, shopDomain, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list templates")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"templates": templates,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetTemplate handles GET /templates/:id
func (h *TemplateHandlers) GetTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	shopDomain, ok := common.GetShopDomainFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "template id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	template, err := h.templateService.GetByID(ctx, shopDomain, id)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, template)
}

// UpdateTemplate handles PUT /templates/:id
func (h *TemplateHandlers) UpdateTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	shopDomain, ok := common.GetShopDomainFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "template id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Name string `json:"name"`
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	template, err := h.templateService.Update(ctx, shopDomain, id, req.Name, req.Body)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, template)
}

// DeleteTemplate handles DELETE /templates/:id
func (h *TemplateHandlers) DeleteTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	shopDomain, ok := common.GetShopDomainFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "template id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.templateService.Delete(ctx, shopDomain, id); err != nil {
		return common.SendNotFoundError(c, "Template")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// PreviewTemplate handles GET /templates/:id/preview?product_id=...
// Renders the template against a product without writing anything.
func (h *TemplateHandlers) PreviewTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	shopDomain, ok := common.GetShopDomainFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "template id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	productID := c.QueryParam("product_id")
	if productID == "" {
		return common.SendValidationError(c, "product_id", "product_id is required")
	}

	product, err := h.productService.GetByID(ctx, sessionID, productID)
	if err != nil {
		return sendServiceError(c, err)
	}

	preview, err := h.templateService.Preview(ctx, shopDomain, id, product)
	if err != nil {
		return sendServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"template_id": id,
		"product_id":  productID,
		"preview":     preview,
	})
}

// ListTokens handles GET /templates/tokens
func (h *TemplateHandlers) ListTokens(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tokens": h.templateService.Tokens(),
	})
}
