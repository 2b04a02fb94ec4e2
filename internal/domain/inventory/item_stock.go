package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PresentationStock is the stock view of one presentation: its conversion
// factor plus the batches attached to it.
type PresentationStock struct {
	PresentationID   uuid.UUID
	Name             string
	IsDefault        bool
	ConversionFactor *decimal.Decimal
	Batches          []Batch
}

// Factor returns the effective conversion factor to base units. Nil or
// non-positive factors are treated as identity, so an unconfigured
// presentation still contributes its raw quantities.
func (p *PresentationStock) Factor() decimal.Decimal {
	if p.ConversionFactor == nil || !p.ConversionFactor.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return *p.ConversionFactor
}

// ActiveQuantity sums the quantity of active batches, in presentation units
func (p *PresentationStock) ActiveQuantity() decimal.Decimal {
	total := decimal.Zero
	for idx := range p.Batches {
		if p.Batches[idx].Active {
			total = total.Add(p.Batches[idx].CurrentQuantity)
		}
	}
	return total
}

// ItemStock is the full stock view of one item: every presentation with its
// active batches. It is a read model loaded per item and is the single input
// to both stock aggregation and batch reconciliation.
type ItemStock struct {
	TenantID      uuid.UUID
	ItemID        uuid.UUID
	Presentations []PresentationStock
}

// SystemQuantity computes the system-tracked quantity in base units:
// for each presentation, the sum of active batch quantities multiplied by
// the presentation's conversion factor, summed across presentations.
// An item with no presentations has a system quantity of zero.
func (s *ItemStock) SystemQuantity() decimal.Decimal {
	total := decimal.Zero
	for idx := range s.Presentations {
		p := &s.Presentations[idx]
		total = total.Add(p.ActiveQuantity().Mul(p.Factor()))
	}
	return total
}

// BatchEntry pairs a batch with its presentation's conversion factor so the
// reconciler can walk batches across presentations in one ordered list.
type BatchEntry struct {
	Batch          *Batch
	PresentationID uuid.UUID
	Factor         decimal.Decimal
}

// BaseQuantity returns the batch quantity projected into base units
func (e *BatchEntry) BaseQuantity() decimal.Decimal {
	return e.Batch.CurrentQuantity.Mul(e.Factor)
}

// FIFOEntries flattens active batches across all presentations and sorts
// them ascending by received date. A batch with no received date sorts
// last: stock of unknown age is never depleted before dated stock.
func (s *ItemStock) FIFOEntries() []BatchEntry {
	entries := make([]BatchEntry, 0)
	for pIdx := range s.Presentations {
		p := &s.Presentations[pIdx]
		factor := p.Factor()
		for bIdx := range p.Batches {
			if !p.Batches[bIdx].Active {
				continue
			}
			entries = append(entries, BatchEntry{
				Batch:          &p.Batches[bIdx],
				PresentationID: p.PresentationID,
				Factor:         factor,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Batch.ReceivedDate, entries[j].Batch.ReceivedDate
		switch {
		case ri != nil && rj != nil:
			return ri.Before(*rj)
		case ri != nil:
			return true
		case rj != nil:
			return false
		default:
			return entries[i].Batch.CreatedAt.Before(entries[j].Batch.CreatedAt)
		}
	})

	return entries
}

// DefaultPresentation returns the presentation flagged as default, falling
// back to the first one. Nil when the item has no presentations.
func (s *ItemStock) DefaultPresentation() *PresentationStock {
	for idx := range s.Presentations {
		if s.Presentations[idx].IsDefault {
			return &s.Presentations[idx]
		}
	}
	if len(s.Presentations) > 0 {
		return &s.Presentations[0]
	}
	return nil
}
