package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mecatos/backend/internal/domain/shared"
)

// Item represents a trackable product in the catalog (an ingredient or a
// finished good). Stock quantities for an item are always compared in its
// base unit; purchasing and counting happen through presentations.
// Item is the aggregate root for catalog operations.
type Item struct {
	shared.TenantAggregateRoot
	Name          string `gorm:"not null"`
	SKU           string `gorm:"not null"`
	BaseUnit      string `gorm:"not null"` // e.g. "lb", "kg", "unit"
	CategoryID    *uuid.UUID
	StorageAreaID *uuid.UUID
	Active        bool `gorm:"not null;default:true"`

	Presentations []Presentation `gorm:"foreignKey:ItemID;references:ID"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// Presentation is a purchasable/countable packaging of an item, e.g.
// "case of 24". ConversionFactor converts one presentation unit into base
// units; a nil or zero factor is treated as identity.
type Presentation struct {
	shared.BaseEntity
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name             string          `gorm:"not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"` // units per presentation
	ConversionFactor *decimal.Decimal `gorm:"type:decimal(18,4)"`
	IsDefault        bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Presentation) TableName() string {
	return "item_presentations"
}

// Factor returns the effective conversion factor to base units.
// Nil or non-positive factors fall back to identity.
func (p *Presentation) Factor() decimal.Decimal {
	if p.ConversionFactor == nil || !p.ConversionFactor.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return *p.ConversionFactor
}

// NewItem creates a new catalog item
func NewItem(tenantID uuid.UUID, name, sku, baseUnit string) (*Item, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Item SKU cannot be empty")
	}
	if baseUnit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Item base unit cannot be empty")
	}

	return &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		SKU:                 sku,
		BaseUnit:            baseUnit,
		Active:              true,
		Presentations:       make([]Presentation, 0),
	}, nil
}

// AddPresentation adds a packaging presentation to the item. The first
// presentation added becomes the default automatically.
func (i *Item) AddPresentation(name string, quantity decimal.Decimal, conversionFactor *decimal.Decimal) (*Presentation, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Presentation name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Presentation quantity must be positive")
	}
	if conversionFactor != nil && conversionFactor.IsNegative() {
		return nil, shared.NewDomainError("INVALID_CONVERSION_FACTOR", "Conversion factor cannot be negative")
	}

	p := Presentation{
		BaseEntity:       shared.NewBaseEntity(),
		ItemID:           i.ID,
		Name:             name,
		Quantity:         quantity,
		ConversionFactor: conversionFactor,
		IsDefault:        len(i.Presentations) == 0,
	}
	i.Presentations = append(i.Presentations, p)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return &i.Presentations[len(i.Presentations)-1], nil
}

// RemovePresentation removes a presentation from the item. If the removed
// presentation was the default, the first remaining one becomes default.
func (i *Item) RemovePresentation(presentationID uuid.UUID) error {
	for idx := range i.Presentations {
		if i.Presentations[idx].ID == presentationID {
			wasDefault := i.Presentations[idx].IsDefault
			i.Presentations = append(i.Presentations[:idx], i.Presentations[idx+1:]...)
			if wasDefault && len(i.Presentations) > 0 {
				i.Presentations[0].IsDefault = true
				i.Presentations[0].Touch()
			}
			i.UpdatedAt = time.Now()
			i.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("PRESENTATION_NOT_FOUND", "Presentation not found on item")
}

// SetDefaultPresentation marks one presentation as default and clears the
// flag on every other presentation, so at most one default exists.
func (i *Item) SetDefaultPresentation(presentationID uuid.UUID) error {
	found := false
	for idx := range i.Presentations {
		if i.Presentations[idx].ID == presentationID {
			found = true
			break
		}
	}
	if !found {
		return shared.NewDomainError("PRESENTATION_NOT_FOUND", "Presentation not found on item")
	}

	for idx := range i.Presentations {
		isTarget := i.Presentations[idx].ID == presentationID
		if i.Presentations[idx].IsDefault != isTarget {
			i.Presentations[idx].IsDefault = isTarget
			i.Presentations[idx].Touch()
		}
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// DefaultPresentation returns the presentation flagged as default, falling
// back to the first presentation when none is flagged. Returns nil when the
// item has no presentations.
func (i *Item) DefaultPresentation() *Presentation {
	for idx := range i.Presentations {
		if i.Presentations[idx].IsDefault {
			return &i.Presentations[idx]
		}
	}
	if len(i.Presentations) > 0 {
		return &i.Presentations[0]
	}
	return nil
}

// FindPresentation returns the presentation with the given ID, or nil
func (i *Item) FindPresentation(presentationID uuid.UUID) *Presentation {
	for idx := range i.Presentations {
		if i.Presentations[idx].ID == presentationID {
			return &i.Presentations[idx]
		}
	}
	return nil
}

// Rename updates the item name
func (i *Item) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	i.Name = name
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// Deactivate marks the item as inactive. Inactive items keep their history
// but are hidden from counting and purchasing flows.
func (i *Item) Deactivate() {
	i.Active = false
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// Activate marks the item as active again
func (i *Item) Activate() {
	i.Active = true
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
