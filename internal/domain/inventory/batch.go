package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mecatos/backend/internal/domain/shared"
)

// Batch represents a physical lot of stock received at a point in time.
// CurrentQuantity is expressed in the units of the owning presentation, not
// in base units; conversion happens through the presentation's factor.
// Batches are never hard-deleted, only zeroed or deactivated.
type Batch struct {
	shared.BaseEntity
	PresentationID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	CurrentQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReceivedDate    *time.Time
	ExpirationDate  *time.Time
	Active          bool       `gorm:"not null;default:true"`
	OrderDetailID   *uuid.UUID `gorm:"type:uuid"` // purchase order line that created this batch, if any
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "item_batches"
}

// NewBatch creates a new stock batch under a presentation
func NewBatch(presentationID uuid.UUID, quantity decimal.Decimal, receivedDate, expirationDate *time.Time) (*Batch, error) {
	if presentationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRESENTATION", "Presentation ID cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity cannot be negative")
	}

	return &Batch{
		BaseEntity:      shared.NewBaseEntity(),
		PresentationID:  presentationID,
		CurrentQuantity: quantity,
		ReceivedDate:    receivedDate,
		ExpirationDate:  expirationDate,
		Active:          true,
	}, nil
}

// HasStock returns true if the batch is active with a positive quantity
func (b *Batch) HasStock() bool {
	return b.Active && b.CurrentQuantity.IsPositive()
}

// IsExpired returns true if the batch has an expiration date in the past
func (b *Batch) IsExpired() bool {
	if b.ExpirationDate == nil {
		return false
	}
	return b.ExpirationDate.Before(time.Now())
}

// Zero empties the batch. The batch stays active so its history remains
// visible; deactivation is a separate decision.
func (b *Batch) Zero() {
	b.CurrentQuantity = decimal.Zero
	b.Touch()
}

// SetQuantity replaces the batch quantity (presentation units)
func (b *Batch) SetQuantity(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Batch quantity cannot be negative")
	}
	b.CurrentQuantity = quantity
	b.Touch()
	return nil
}

// Add increases the batch quantity (presentation units)
func (b *Batch) Add(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Added quantity cannot be negative")
	}
	b.CurrentQuantity = b.CurrentQuantity.Add(quantity)
	b.Touch()
	return nil
}

// Deactivate excludes the batch from all stock math
func (b *Batch) Deactivate() {
	b.Active = false
	b.Touch()
}
