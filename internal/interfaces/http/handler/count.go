package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/mecatos/backend/internal/application/inventory"
)

// CountHandler handles inventory count API endpoints
type CountHandler struct {
	BaseHandler
	countService *inventoryapp.CountService
}

// NewCountHandler creates a new CountHandler
func NewCountHandler(countService *inventoryapp.CountService) *CountHandler {
	return &CountHandler{countService: countService}
}

// GetByID retrieves a count with its details
func (h *CountHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	result, err := h.countService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// List returns a paginated list of counts. Date filters are RFC3339
// timestamps passed as start_date and end_date query parameters.
func (h *CountHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter inventoryapp.CountListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	results, total, err := h.countService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// GetMovements returns the batch movements recorded while reconciling a count
func (h *CountHandler) GetMovements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	results, err := h.countService.GetMovements(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, results)
}

// Create records a new inventory count and reconciles batches
func (h *CountHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.CreateCountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.countService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Update revises an existing count and re-reconciles changed items
func (h *CountHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	var req inventoryapp.UpdateCountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.countService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete removes a count record. Batch adjustments already applied by the
// count are kept.
func (h *CountHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	if err := h.countService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all inventory count routes
func (h *CountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	counts := rg.Group("/inventory/counts")
	{
		counts.GET("", h.List)
		counts.POST("", h.Create)
		counts.GET("/:id", h.GetByID)
		counts.PUT("/:id", h.Update)
		counts.DELETE("/:id", h.Delete)
		counts.GET("/:id/movements", h.GetMovements)
	}
}
