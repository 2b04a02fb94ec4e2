package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mecatos/backend/internal/domain/catalog"
)

// ===================== Request DTOs =====================

// CreatePresentationRequest represents one packaging option of an item
type CreatePresentationRequest struct {
	Name             string           `json:"name" binding:"required,min=1,max=200"`
	Quantity         decimal.Decimal  `json:"quantity" binding:"required"`
	ConversionFactor *decimal.Decimal `json:"conversion_factor"`
}

// CreateItemRequest represents a request to create a catalog item
type CreateItemRequest struct {
	Name          string                      `json:"name" binding:"required,min=1,max=200"`
	SKU           string                      `json:"sku" binding:"required,min=1,max=100"`
	BaseUnit      string                      `json:"base_unit" binding:"required,min=1,max=50"`
	CategoryID    *uuid.UUID                  `json:"category_id"`
	StorageAreaID *uuid.UUID                  `json:"storage_area_id"`
	Presentations []CreatePresentationRequest `json:"presentations" binding:"dive"`
}

// UpdateItemRequest represents a request to update item fields
type UpdateItemRequest struct {
	Name          string     `json:"name" binding:"required,min=1,max=200"`
	CategoryID    *uuid.UUID `json:"category_id"`
	StorageAreaID *uuid.UUID `json:"storage_area_id"`
}

// ItemListFilter represents filter options for the item list
type ItemListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// ===================== Response DTOs =====================

// PresentationResponse represents a presentation in responses
type PresentationResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Quantity         decimal.Decimal `json:"quantity"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	IsDefault        bool            `json:"is_default"`
}

// ItemResponse represents a catalog item with its presentations
type ItemResponse struct {
	ID            uuid.UUID              `json:"id"`
	TenantID      uuid.UUID              `json:"tenant_id"`
	Name          string                 `json:"name"`
	SKU           string                 `json:"sku"`
	BaseUnit      string                 `json:"base_unit"`
	CategoryID    *uuid.UUID             `json:"category_id,omitempty"`
	StorageAreaID *uuid.UUID             `json:"storage_area_id,omitempty"`
	Active        bool                   `json:"active"`
	Presentations []PresentationResponse `json:"presentations"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ItemListResponse is the summary row for item listings
type ItemListResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	SKU      string    `json:"sku"`
	BaseUnit string    `json:"base_unit"`
	Active   bool      `json:"active"`
}

// ===================== Converters =====================

// ToItemResponse converts an Item to its response DTO
func ToItemResponse(item *catalog.Item) ItemResponse {
	presentations := make([]PresentationResponse, 0, len(item.Presentations))
	for idx := range item.Presentations {
		p := &item.Presentations[idx]
		presentations = append(presentations, PresentationResponse{
			ID:               p.ID,
			Name:             p.Name,
			Quantity:         p.Quantity,
			ConversionFactor: p.Factor(),
			IsDefault:        p.IsDefault,
		})
	}

	return ItemResponse{
		ID:            item.ID,
		TenantID:      item.TenantID,
		Name:          item.Name,
		SKU:           item.SKU,
		BaseUnit:      item.BaseUnit,
		CategoryID:    item.CategoryID,
		StorageAreaID: item.StorageAreaID,
		Active:        item.Active,
		Presentations: presentations,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

// ToItemListResponses converts items to summary rows
func ToItemListResponses(items []catalog.Item) []ItemListResponse {
	responses := make([]ItemListResponse, 0, len(items))
	for idx := range items {
		i := &items[idx]
		responses = append(responses, ItemListResponse{
			ID:       i.ID,
			Name:     i.Name,
			SKU:      i.SKU,
			BaseUnit: i.BaseUnit,
			Active:   i.Active,
		})
	}
	return responses
}
