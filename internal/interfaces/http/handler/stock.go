package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/mecatos/backend/internal/application/inventory"
)

// StockHandler handles stock query and batch management API endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// GetItemStock returns the aggregated stock of one item with its batches
func (h *StockHandler) GetItemStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	result, err := h.stockService.GetItemStock(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetBulkStock returns aggregated stock for the comma separated item IDs
// in the item_ids query parameter
func (h *StockHandler) GetBulkStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	raw := c.Query("item_ids")
	if raw == "" {
		h.BadRequest(c, "Missing item_ids query parameter")
		return
	}

	itemIDs := make([]uuid.UUID, 0)
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			h.BadRequest(c, "Invalid item ID format: "+part)
			return
		}
		itemIDs = append(itemIDs, id)
	}

	results, err := h.stockService.GetStockForItems(c.Request.Context(), tenantID, itemIDs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, results)
}

// CreateBatch registers a manually received batch for an item presentation
func (h *StockHandler) CreateBatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req inventoryapp.CreateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.stockService.CreateBatch(c.Request.Context(), tenantID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// DeactivateBatch excludes a batch from stock aggregation
func (h *StockHandler) DeactivateBatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	if err := h.stockService.DeactivateBatch(c.Request.Context(), tenantID, itemID, batchID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ListBatchMovements returns the movement history of a batch
func (h *StockHandler) ListBatchMovements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	results, total, err := h.stockService.ListBatchMovements(c.Request.Context(), tenantID, batchID, page, pageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, page, pageSize)
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/inventory/stock")
	{
		stock.GET("", h.GetBulkStock)
		stock.GET("/items/:itemId", h.GetItemStock)
		stock.POST("/items/:itemId/batches", h.CreateBatch)
		stock.DELETE("/items/:itemId/batches/:batchId", h.DeactivateBatch)
		stock.GET("/batches/:batchId/movements", h.ListBatchMovements)
	}
}
