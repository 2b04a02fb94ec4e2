package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mecatos/backend/internal/domain/inventory"
)

// GormItemStockRepository loads the per-item stock read model by joining
// items, presentations and active batches
type GormItemStockRepository struct {
	db *gorm.DB
}

// NewGormItemStockRepository creates a new GormItemStockRepository
func NewGormItemStockRepository(db *gorm.DB) *GormItemStockRepository {
	return &GormItemStockRepository{db: db}
}

// presentationRow is the projection of a presentation joined to its item
type presentationRow struct {
	ID               uuid.UUID
	ItemID           uuid.UUID
	Name             string
	IsDefault        bool
	ConversionFactor *decimal.Decimal
}

// LoadForItem loads all presentations and active batches of one item.
// An item with no presentations yields an empty stock view, never nil.
func (r *GormItemStockRepository) LoadForItem(ctx context.Context, tenantID, itemID uuid.UUID) (*inventory.ItemStock, error) {
	stocks, err := r.LoadForItems(ctx, tenantID, []uuid.UUID{itemID})
	if err != nil {
		return nil, err
	}
	if stock, ok := stocks[itemID]; ok {
		return stock, nil
	}
	return &inventory.ItemStock{TenantID: tenantID, ItemID: itemID}, nil
}

// LoadForItems loads stock views for several items keyed by item ID.
// Items without any presentation are present in the result with an empty view.
func (r *GormItemStockRepository) LoadForItems(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]*inventory.ItemStock, error) {
	result := make(map[uuid.UUID]*inventory.ItemStock, len(itemIDs))
	for _, itemID := range itemIDs {
		result[itemID] = &inventory.ItemStock{TenantID: tenantID, ItemID: itemID}
	}
	if len(itemIDs) == 0 {
		return result, nil
	}

	var rows []presentationRow
	if err := r.db.WithContext(ctx).
		Table("item_presentations").
		Select("item_presentations.id, item_presentations.item_id, item_presentations.name, item_presentations.is_default, item_presentations.conversion_factor").
		Joins("JOIN items ON items.id = item_presentations.item_id").
		Where("items.tenant_id = ? AND item_presentations.item_id IN ?", tenantID, itemIDs).
		Order("item_presentations.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return result, nil
	}

	presentationIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		presentationIDs = append(presentationIDs, row.ID)
	}

	var batches []inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("presentation_id IN ? AND active = ?", presentationIDs, true).
		Order("COALESCE(received_date, '9999-12-31') ASC, created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}

	batchesByPresentation := make(map[uuid.UUID][]inventory.Batch, len(presentationIDs))
	for _, batch := range batches {
		batchesByPresentation[batch.PresentationID] = append(batchesByPresentation[batch.PresentationID], batch)
	}

	for _, row := range rows {
		stock, ok := result[row.ItemID]
		if !ok {
			continue
		}
		stock.Presentations = append(stock.Presentations, inventory.PresentationStock{
			PresentationID:   row.ID,
			Name:             row.Name,
			IsDefault:        row.IsDefault,
			ConversionFactor: row.ConversionFactor,
			Batches:          batchesByPresentation[row.ID],
		})
	}

	return result, nil
}

// Ensure GormItemStockRepository implements ItemStockRepository
var _ inventory.ItemStockRepository = (*GormItemStockRepository)(nil)
