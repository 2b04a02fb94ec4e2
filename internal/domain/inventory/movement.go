package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mecatos/backend/internal/domain/shared"
)

// MovementReason identifies why a batch quantity changed
type MovementReason string

const (
	// MovementReasonCountAdjustment records a change driven by an inventory count
	MovementReasonCountAdjustment MovementReason = "COUNT_ADJUSTMENT"
	// MovementReasonReceiving records stock entering through a new batch
	MovementReasonReceiving MovementReason = "RECEIVING"
	// MovementReasonManual records an operator-initiated correction
	MovementReasonManual MovementReason = "MANUAL"
)

// BatchMovement is an append-only ledger entry recording a single batch
// quantity change. Quantities are in the batch's presentation units.
// Movements are never updated or deleted once written.
type BatchMovement struct {
	shared.BaseEntity
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Reason           MovementReason  `gorm:"size:50;not null"`
	QuantityBefore   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceID      *uuid.UUID      `gorm:"type:uuid;index"` // inventory count that caused the change, if any
}

// TableName returns the table name for GORM
func (BatchMovement) TableName() string {
	return "batch_movements"
}

// NewBatchMovement creates a ledger entry for one batch change
func NewBatchMovement(tenantID, batchID, itemID uuid.UUID, reason MovementReason, before, after decimal.Decimal, referenceID *uuid.UUID) *BatchMovement {
	return &BatchMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		BatchID:        batchID,
		ItemID:         itemID,
		Reason:         reason,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceID:    referenceID,
	}
}

// Delta returns the signed quantity change in presentation units
func (m *BatchMovement) Delta() decimal.Decimal {
	return m.QuantityAfter.Sub(m.QuantityBefore)
}
