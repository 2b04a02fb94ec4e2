package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mecatos/backend/internal/domain/shared"
)

// InventoryCount is a physical stock take: a header recording who counted
// and when, plus one detail line per counted item. The difference on each
// line is persisted at creation time and drives batch reconciliation.
type InventoryCount struct {
	shared.TenantAggregateRoot
	CountDate     time.Time `gorm:"not null;index"`
	CountedByID   *uuid.UUID
	CountedByName string `gorm:"size:200"`
	Notes         string `gorm:"size:1000"`
	Details       []CountDetail `gorm:"foreignKey:CountID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InventoryCount) TableName() string {
	return "inventory_counts"
}

// CountDetail is one counted item within a stock take. Quantities are in
// base units. Difference is always CountedQuantity minus SystemQuantity:
// negative means shortage, positive means surplus.
type CountDetail struct {
	shared.BaseEntity
	CountID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	CountedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SystemQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Difference      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CountDetail) TableName() string {
	return "inventory_count_details"
}

// NewInventoryCount creates an inventory count header
func NewInventoryCount(tenantID uuid.UUID, countDate time.Time, countedByID *uuid.UUID, countedByName, notes string) (*InventoryCount, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if countDate.IsZero() {
		countDate = time.Now()
	}

	count := &InventoryCount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CountDate:           countDate,
		CountedByID:         countedByID,
		CountedByName:       countedByName,
		Notes:               notes,
		Details:             make([]CountDetail, 0),
	}
	return count, nil
}

// AddDetail appends a counted line for an item. The system quantity is
// snapshotted at count time and the difference computed from it. An item
// may only appear once per count.
func (c *InventoryCount) AddDetail(itemID uuid.UUID, countedQuantity, systemQuantity decimal.Decimal) (*CountDetail, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if countedQuantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	if c.FindDetail(itemID) != nil {
		return nil, shared.NewDomainError("DUPLICATE_ITEM", "Item is already counted in this inventory count")
	}

	detail := CountDetail{
		BaseEntity:      shared.NewBaseEntity(),
		CountID:         c.ID,
		ItemID:          itemID,
		CountedQuantity: countedQuantity,
		SystemQuantity:  systemQuantity,
		Difference:      countedQuantity.Sub(systemQuantity),
	}
	c.Details = append(c.Details, detail)
	c.Touch()
	return &c.Details[len(c.Details)-1], nil
}

// UpdateDetail replaces the counted quantity of an existing line and
// returns the delta between the new and old differences. The delta is what
// reconciliation must still apply: re-submitting the same counted quantity
// yields a zero delta and therefore no batch movement.
func (c *InventoryCount) UpdateDetail(itemID uuid.UUID, countedQuantity decimal.Decimal) (*CountDetail, decimal.Decimal, error) {
	if countedQuantity.IsNegative() {
		return nil, decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}

	detail := c.FindDetail(itemID)
	if detail == nil {
		return nil, decimal.Zero, shared.NewDomainError("DETAIL_NOT_FOUND", "Item is not part of this inventory count")
	}

	oldDifference := detail.Difference
	detail.CountedQuantity = countedQuantity
	detail.Difference = countedQuantity.Sub(detail.SystemQuantity)
	detail.Touch()
	c.Touch()

	return detail, detail.Difference.Sub(oldDifference), nil
}

// FindDetail returns the detail line for an item, or nil
func (c *InventoryCount) FindDetail(itemID uuid.UUID) *CountDetail {
	for idx := range c.Details {
		if c.Details[idx].ItemID == itemID {
			return &c.Details[idx]
		}
	}
	return nil
}

// UpdateHeader changes the descriptive fields of the count
func (c *InventoryCount) UpdateHeader(countDate time.Time, countedByID *uuid.UUID, countedByName, notes string) {
	if !countDate.IsZero() {
		c.CountDate = countDate
	}
	c.CountedByID = countedByID
	c.CountedByName = countedByName
	c.Notes = notes
	c.Touch()
}

// HasDiscrepancies returns true when any line differs from the system
// quantity by more than the depletion tolerance
func (c *InventoryCount) HasDiscrepancies() bool {
	for idx := range c.Details {
		if c.Details[idx].Difference.Abs().GreaterThan(depletionEpsilon) {
			return true
		}
	}
	return false
}
