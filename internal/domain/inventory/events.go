package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mecatos/backend/internal/domain/shared"
)

const (
	EventTypeCountRecorded   = "inventory.count.recorded"
	EventTypeCountUpdated    = "inventory.count.updated"
	EventTypeCountDeleted    = "inventory.count.deleted"
	EventTypeStockShortfall  = "inventory.stock.shortfall"
	EventTypeBatchesAdjusted = "inventory.batches.adjusted"
)

// CountRecordedEvent is published after a new inventory count and its
// reconciliation have been persisted
type CountRecordedEvent struct {
	shared.BaseDomainEvent
	ItemCount        int  `json:"item_count"`
	HasDiscrepancies bool `json:"has_discrepancies"`
}

// NewCountRecordedEvent creates a count recorded event
func NewCountRecordedEvent(count *InventoryCount) *CountRecordedEvent {
	return &CountRecordedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCountRecorded, "InventoryCount", count.ID, count.TenantID),
		ItemCount:        len(count.Details),
		HasDiscrepancies: count.HasDiscrepancies(),
	}
}

// CountUpdatedEvent is published after an existing count is modified
type CountUpdatedEvent struct {
	shared.BaseDomainEvent
	UpdatedItems int `json:"updated_items"`
}

// NewCountUpdatedEvent creates a count updated event
func NewCountUpdatedEvent(count *InventoryCount, updatedItems int) *CountUpdatedEvent {
	return &CountUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCountUpdated, "InventoryCount", count.ID, count.TenantID),
		UpdatedItems:    updatedItems,
	}
}

// CountDeletedEvent is published after a count header and its details are
// removed. Batch adjustments already applied are not rolled back.
type CountDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewCountDeletedEvent creates a count deleted event
func NewCountDeletedEvent(countID, tenantID uuid.UUID) *CountDeletedEvent {
	return &CountDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCountDeleted, "InventoryCount", countID, tenantID),
	}
}

// BatchesAdjustedEvent is published after reconciliation changed batch
// quantities for one counted item
type BatchesAdjustedEvent struct {
	shared.BaseDomainEvent
	ItemID       uuid.UUID       `json:"item_id"`
	Difference   decimal.Decimal `json:"difference"`
	StepsApplied int             `json:"steps_applied"`
}

// NewBatchesAdjustedEvent creates a batches adjusted event
func NewBatchesAdjustedEvent(countID, tenantID, itemID uuid.UUID, difference decimal.Decimal, stepsApplied int) *BatchesAdjustedEvent {
	return &BatchesAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchesAdjusted, "InventoryCount", countID, tenantID),
		ItemID:          itemID,
		Difference:      difference,
		StepsApplied:    stepsApplied,
	}
}

// StockShortfallEvent is published when a counted shortage exceeded the
// stock available in batches. The count itself still succeeds.
type StockShortfallEvent struct {
	shared.BaseDomainEvent
	ItemID    uuid.UUID       `json:"item_id"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// NewStockShortfallEvent creates a stock shortfall event
func NewStockShortfallEvent(countID, tenantID, itemID uuid.UUID, shortfall decimal.Decimal) *StockShortfallEvent {
	return &StockShortfallEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockShortfall, "InventoryCount", countID, tenantID),
		ItemID:          itemID,
		Shortfall:       shortfall,
	}
}
