package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/mecatos/backend/internal/domain/shared"
)

// CountRepository defines the interface for inventory count persistence
type CountRepository interface {
	// FindByIDForTenant finds a count with its details within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*InventoryCount, error)

	// FindAllForTenant lists counts for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[InventoryCount], error)

	// Save creates or updates a count together with its detail lines
	Save(ctx context.Context, count *InventoryCount) error

	// DeleteForTenant removes a count and its details within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts inventory counts for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BatchRepository defines the interface for stock batch persistence.
// Batches belong to a tenant through their presentation's item.
type BatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByPresentationID finds all batches under a presentation
	FindByPresentationID(ctx context.Context, presentationID uuid.UUID) ([]Batch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *Batch) error

	// SaveQuantity writes only the quantity of an existing batch. Used by
	// reconciliation so a partially applied plan leaves earlier writes intact.
	SaveQuantity(ctx context.Context, batch *Batch) error
}

// ItemStockRepository loads the per-item stock view used for system
// quantity aggregation and reconciliation
type ItemStockRepository interface {
	// LoadForItem loads all presentations and active batches of one item
	LoadForItem(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemStock, error)

	// LoadForItems loads stock views for several items keyed by item ID
	LoadForItems(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]*ItemStock, error)
}

// MovementRepository appends batch movement ledger entries. The ledger is
// append-only: there is no update or delete.
type MovementRepository interface {
	// Save appends a movement entry
	Save(ctx context.Context, movement *BatchMovement) error

	// FindByBatchID lists movements of one batch, newest first
	FindByBatchID(ctx context.Context, tenantID, batchID uuid.UUID, filter shared.Filter) (*shared.Paginated[BatchMovement], error)

	// FindByReferenceID lists movements caused by one inventory count
	FindByReferenceID(ctx context.Context, tenantID, referenceID uuid.UUID) ([]BatchMovement, error)
}
