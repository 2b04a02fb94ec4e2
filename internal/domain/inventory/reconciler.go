package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mecatos/backend/internal/domain/shared"
)

// depletionEpsilon absorbs rounding noise from unit conversions when deciding
// whether a batch is fully consumed. A batch whose base quantity is within
// this tolerance of the remaining shortage is zeroed rather than left with a
// residual sliver.
var depletionEpsilon = decimal.New(1, -9) // 1e-9

// AdjustmentAction describes what an adjustment step does to a batch
type AdjustmentAction string

const (
	// AdjustmentActionDeplete fully zeroes a batch
	AdjustmentActionDeplete AdjustmentAction = "DEPLETE"
	// AdjustmentActionPartialDeplete reduces a batch and terminates the walk
	AdjustmentActionPartialDeplete AdjustmentAction = "PARTIAL_DEPLETE"
	// AdjustmentActionReplenish adds surplus to the most recent batch
	AdjustmentActionReplenish AdjustmentAction = "REPLENISH"
	// AdjustmentActionCreate creates a batch to hold a surplus
	AdjustmentActionCreate AdjustmentAction = "CREATE"
)

// AdjustmentStep is one planned batch mutation. Quantities are in the
// batch's presentation units; BaseDelta is the signed base-unit change the
// step contributes.
type AdjustmentStep struct {
	BatchID          uuid.UUID
	PresentationID   uuid.UUID
	Action           AdjustmentAction
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	BaseDelta        decimal.Decimal
}

// AdjustmentPlan is the ordered set of batch mutations that shifts an item's
// active stock by Diff base units. Steps must be applied in order: the FIFO
// walk guarantees at most one partial depletion, always as the last
// depletion step.
type AdjustmentPlan struct {
	ItemID uuid.UUID
	Diff   decimal.Decimal
	Steps  []AdjustmentStep

	// NewBatch is set when a surplus has no existing batch to absorb it.
	// It is created under the item's default presentation.
	NewBatch *Batch

	// Shortfall is the base-unit remainder of a shortage that available
	// stock could not satisfy. Negative batch quantities are never planned;
	// the remainder is surfaced instead.
	Shortfall decimal.Decimal

	// NoPresentation is true when a surplus needed a new batch but the item
	// has no presentation to attach one to. No mutation is planned.
	NoPresentation bool
}

// IsNoop returns true when the plan performs no mutation
func (p *AdjustmentPlan) IsNoop() bool {
	return len(p.Steps) == 0 && p.NewBatch == nil
}

// HasShortfall returns true when a shortage could not be fully satisfied
func (p *AdjustmentPlan) HasShortfall() bool {
	return p.Shortfall.IsPositive()
}

// PlanAdjustment computes the batch mutations needed to shift the item's
// active stock by diff base units. Negative diff removes stock walking
// batches oldest-first; positive diff adds stock to the most recent batch,
// creating one when none exists. The plan is pure: batches in stock are not
// mutated, callers persist the steps.
func PlanAdjustment(stock *ItemStock, diff decimal.Decimal) (*AdjustmentPlan, error) {
	if stock == nil {
		return nil, shared.NewDomainError("INVALID_STOCK", "Item stock cannot be nil")
	}

	plan := &AdjustmentPlan{
		ItemID:    stock.ItemID,
		Diff:      diff,
		Steps:     make([]AdjustmentStep, 0),
		Shortfall: decimal.Zero,
	}

	if diff.IsZero() {
		return plan, nil
	}

	entries := stock.FIFOEntries()

	if diff.IsNegative() {
		planDepletion(plan, entries, diff.Abs())
		return plan, nil
	}

	planReplenishment(plan, stock, entries, diff)
	return plan, nil
}

// planDepletion walks batches in FIFO order removing toRemove base units.
// Batches whose base quantity fits within the remainder (plus epsilon) are
// zeroed; the first batch that exceeds it absorbs the rest and ends the
// walk. Whatever cannot be satisfied is reported as shortfall.
func planDepletion(plan *AdjustmentPlan, entries []BatchEntry, toRemove decimal.Decimal) {
	for idx := range entries {
		if !toRemove.IsPositive() {
			break
		}

		entry := &entries[idx]
		batchBase := entry.BaseQuantity()
		if !batchBase.IsPositive() {
			continue
		}

		if batchBase.LessThanOrEqual(toRemove.Add(depletionEpsilon)) {
			plan.Steps = append(plan.Steps, AdjustmentStep{
				BatchID:          entry.Batch.ID,
				PresentationID:   entry.PresentationID,
				Action:           AdjustmentActionDeplete,
				PreviousQuantity: entry.Batch.CurrentQuantity,
				NewQuantity:      decimal.Zero,
				BaseDelta:        batchBase.Neg(),
			})
			toRemove = toRemove.Sub(batchBase)
			continue
		}

		// This batch covers the remainder; only one partial depletion ever
		// happens per plan.
		newBase := batchBase.Sub(toRemove)
		newQuantity := newBase.Div(entry.Factor)
		plan.Steps = append(plan.Steps, AdjustmentStep{
			BatchID:          entry.Batch.ID,
			PresentationID:   entry.PresentationID,
			Action:           AdjustmentActionPartialDeplete,
			PreviousQuantity: entry.Batch.CurrentQuantity,
			NewQuantity:      newQuantity,
			BaseDelta:        toRemove.Neg(),
		})
		toRemove = decimal.Zero
		break
	}

	if toRemove.IsPositive() {
		plan.Shortfall = toRemove
	}
}

// planReplenishment places diff base units of surplus. The most recently
// received batch absorbs it; with no batches at all a new batch is created
// under the default presentation.
func planReplenishment(plan *AdjustmentPlan, stock *ItemStock, entries []BatchEntry, diff decimal.Decimal) {
	if len(entries) > 0 {
		latest := &entries[len(entries)-1]
		added := diff.Div(latest.Factor)
		plan.Steps = append(plan.Steps, AdjustmentStep{
			BatchID:          latest.Batch.ID,
			PresentationID:   latest.PresentationID,
			Action:           AdjustmentActionReplenish,
			PreviousQuantity: latest.Batch.CurrentQuantity,
			NewQuantity:      latest.Batch.CurrentQuantity.Add(added),
			BaseDelta:        diff,
		})
		return
	}

	presentation := stock.DefaultPresentation()
	if presentation == nil {
		plan.NoPresentation = true
		return
	}

	now := time.Now()
	batch := &Batch{
		BaseEntity:      shared.NewBaseEntity(),
		PresentationID:  presentation.PresentationID,
		CurrentQuantity: diff.Div(presentation.Factor()),
		ReceivedDate:    &now,
		ExpirationDate:  nil,
		Active:          true,
	}
	plan.NewBatch = batch
	plan.Steps = append(plan.Steps, AdjustmentStep{
		BatchID:          batch.ID,
		PresentationID:   presentation.PresentationID,
		Action:           AdjustmentActionCreate,
		PreviousQuantity: decimal.Zero,
		NewQuantity:      batch.CurrentQuantity,
		BaseDelta:        diff,
	})
}
