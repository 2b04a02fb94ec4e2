package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mecatos/backend/internal/domain/inventory"
)

// ===================== Request DTOs =====================

// CountItemRequest is one counted item line. CountedQuantity is a pointer
// so that validation distinguishes an omitted quantity from a counted zero.
type CountItemRequest struct {
	ItemID          uuid.UUID        `json:"item_id" binding:"required"`
	CountedQuantity *decimal.Decimal `json:"counted_quantity" binding:"required,gte=0"`
}

// CreateCountRequest represents a request to record an inventory count
type CreateCountRequest struct {
	CountDate     *time.Time         `json:"count_date"` // Optional, defaults to now
	CountedByID   *uuid.UUID         `json:"counted_by_id"`
	CountedByName string             `json:"counted_by_name" binding:"max=200"`
	Notes         string             `json:"notes" binding:"max=1000"`
	Items         []CountItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateCountRequest represents a request to revise an existing count.
// Only items already on the count may appear; reconciliation applies the
// change between the new and previously persisted differences.
type UpdateCountRequest struct {
	CountDate     *time.Time         `json:"count_date"`
	CountedByID   *uuid.UUID         `json:"counted_by_id"`
	CountedByName string             `json:"counted_by_name" binding:"max=200"`
	Notes         string             `json:"notes" binding:"max=1000"`
	Items         []CountItemRequest `json:"items" binding:"dive"`
}

// CountListFilter represents filter options for the count list
type CountListFilter struct {
	Search    string     `form:"search"`
	StartDate *time.Time `form:"start_date"`
	EndDate   *time.Time `form:"end_date"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir"`
}

// ===================== Response DTOs =====================

// CountDetailResponse is one counted line in a response
type CountDetailResponse struct {
	ID              uuid.UUID       `json:"id"`
	ItemID          uuid.UUID       `json:"item_id"`
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	SystemQuantity  decimal.Decimal `json:"system_quantity"`
	Difference      decimal.Decimal `json:"difference"`
}

// ReconciliationWarning reports a non-fatal condition hit while adjusting
// batches for a counted item. The count itself succeeded.
type ReconciliationWarning struct {
	ItemID    uuid.UUID        `json:"item_id"`
	Code      string           `json:"code"`
	Message   string           `json:"message"`
	Shortfall *decimal.Decimal `json:"shortfall,omitempty"`
}

const (
	// WarningCodeInsufficientStock marks a shortage larger than available stock
	WarningCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// WarningCodeNoPresentation marks a surplus with no presentation to receive it
	WarningCodeNoPresentation = "NO_PRESENTATION"
	// WarningCodeAdjustmentFailed marks a batch write that failed mid-plan
	WarningCodeAdjustmentFailed = "ADJUSTMENT_FAILED"
)

// CountResponse represents an inventory count with its lines
type CountResponse struct {
	ID            uuid.UUID               `json:"id"`
	TenantID      uuid.UUID               `json:"tenant_id"`
	CountDate     time.Time               `json:"count_date"`
	CountedByID   *uuid.UUID              `json:"counted_by_id,omitempty"`
	CountedByName string                  `json:"counted_by_name,omitempty"`
	Notes         string                  `json:"notes,omitempty"`
	Details       []CountDetailResponse   `json:"details"`
	Warnings      []ReconciliationWarning `json:"warnings,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// CountListResponse is the summary row for count listings
type CountListResponse struct {
	ID            uuid.UUID `json:"id"`
	CountDate     time.Time `json:"count_date"`
	CountedByName string    `json:"counted_by_name,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ItemStockResponse is the aggregated stock view of one item
type ItemStockResponse struct {
	ItemID         uuid.UUID                   `json:"item_id"`
	SystemQuantity decimal.Decimal             `json:"system_quantity"`
	Presentations  []PresentationStockResponse `json:"presentations"`
}

// PresentationStockResponse is the per-presentation stock breakdown
type PresentationStockResponse struct {
	PresentationID   uuid.UUID            `json:"presentation_id"`
	Name             string               `json:"name"`
	IsDefault        bool                 `json:"is_default"`
	ConversionFactor decimal.Decimal      `json:"conversion_factor"`
	ActiveQuantity   decimal.Decimal      `json:"active_quantity"`
	BaseQuantity     decimal.Decimal      `json:"base_quantity"`
	Batches          []BatchStockResponse `json:"batches"`
}

// BatchStockResponse is one batch within the stock view
type BatchStockResponse struct {
	ID              uuid.UUID       `json:"id"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	ReceivedDate    *time.Time      `json:"received_date,omitempty"`
	ExpirationDate  *time.Time      `json:"expiration_date,omitempty"`
	Active          bool            `json:"active"`
}

// MovementResponse is one ledger entry of a batch quantity change
type MovementResponse struct {
	ID             uuid.UUID       `json:"id"`
	BatchID        uuid.UUID       `json:"batch_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	Reason         string          `json:"reason"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	ReferenceID    *uuid.UUID      `json:"reference_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ===================== Converters =====================

// ToCountResponse converts an InventoryCount to its response DTO
func ToCountResponse(count *inventory.InventoryCount, warnings []ReconciliationWarning) CountResponse {
	details := make([]CountDetailResponse, 0, len(count.Details))
	for idx := range count.Details {
		d := &count.Details[idx]
		details = append(details, CountDetailResponse{
			ID:              d.ID,
			ItemID:          d.ItemID,
			CountedQuantity: d.CountedQuantity,
			SystemQuantity:  d.SystemQuantity,
			Difference:      d.Difference,
		})
	}

	return CountResponse{
		ID:            count.ID,
		TenantID:      count.TenantID,
		CountDate:     count.CountDate,
		CountedByID:   count.CountedByID,
		CountedByName: count.CountedByName,
		Notes:         count.Notes,
		Details:       details,
		Warnings:      warnings,
		CreatedAt:     count.CreatedAt,
		UpdatedAt:     count.UpdatedAt,
	}
}

// ToCountListResponses converts counts to summary rows
func ToCountListResponses(counts []inventory.InventoryCount) []CountListResponse {
	responses := make([]CountListResponse, 0, len(counts))
	for idx := range counts {
		c := &counts[idx]
		responses = append(responses, CountListResponse{
			ID:            c.ID,
			CountDate:     c.CountDate,
			CountedByName: c.CountedByName,
			Notes:         c.Notes,
			ItemCount:     len(c.Details),
			CreatedAt:     c.CreatedAt,
		})
	}
	return responses
}

// ToItemStockResponse converts the stock view to its response DTO
func ToItemStockResponse(stock *inventory.ItemStock) ItemStockResponse {
	presentations := make([]PresentationStockResponse, 0, len(stock.Presentations))
	for idx := range stock.Presentations {
		p := &stock.Presentations[idx]
		batches := make([]BatchStockResponse, 0, len(p.Batches))
		for bIdx := range p.Batches {
			b := &p.Batches[bIdx]
			batches = append(batches, BatchStockResponse{
				ID:              b.ID,
				CurrentQuantity: b.CurrentQuantity,
				ReceivedDate:    b.ReceivedDate,
				ExpirationDate:  b.ExpirationDate,
				Active:          b.Active,
			})
		}
		active := p.ActiveQuantity()
		presentations = append(presentations, PresentationStockResponse{
			PresentationID:   p.PresentationID,
			Name:             p.Name,
			IsDefault:        p.IsDefault,
			ConversionFactor: p.Factor(),
			ActiveQuantity:   active,
			BaseQuantity:     active.Mul(p.Factor()),
			Batches:          batches,
		})
	}

	return ItemStockResponse{
		ItemID:         stock.ItemID,
		SystemQuantity: stock.SystemQuantity(),
		Presentations:  presentations,
	}
}

// ToMovementResponses converts ledger entries to response DTOs
func ToMovementResponses(movements []inventory.BatchMovement) []MovementResponse {
	responses := make([]MovementResponse, 0, len(movements))
	for idx := range movements {
		m := &movements[idx]
		responses = append(responses, MovementResponse{
			ID:             m.ID,
			BatchID:        m.BatchID,
			ItemID:         m.ItemID,
			Reason:         string(m.Reason),
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			ReferenceID:    m.ReferenceID,
			CreatedAt:      m.CreatedAt,
		})
	}
	return responses
}
