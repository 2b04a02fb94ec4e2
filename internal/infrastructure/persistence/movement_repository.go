package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mecatos/backend/internal/domain/inventory"
	"github.com/mecatos/backend/internal/domain/shared"
)

// GormMovementRepository implements MovementRepository using GORM.
// The movement ledger is append-only.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Save appends a movement entry
func (r *GormMovementRepository) Save(ctx context.Context, movement *inventory.BatchMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByBatchID lists movements of one batch, newest first
func (r *GormMovementRepository) FindByBatchID(ctx context.Context, tenantID, batchID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.BatchMovement], error) {
	base := r.db.WithContext(ctx).Model(&inventory.BatchMovement{}).
		Where("tenant_id = ? AND batch_id = ?", tenantID, batchID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var movements []inventory.BatchMovement
	if err := r.applyFilter(base, filter).Find(&movements).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(movements, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindByReferenceID lists movements caused by one inventory count
func (r *GormMovementRepository) FindByReferenceID(ctx context.Context, tenantID, referenceID uuid.UUID) ([]inventory.BatchMovement, error) {
	var movements []inventory.BatchMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_id = ?", tenantID, referenceID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// applyFilter applies pagination and ordering to a query
func (r *GormMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))
}

// Ensure GormMovementRepository implements MovementRepository
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
