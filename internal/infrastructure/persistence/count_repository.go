package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mecatos/backend/internal/domain/inventory"
	"github.com/mecatos/backend/internal/domain/shared"
)

// GormCountRepository implements CountRepository using GORM
type GormCountRepository struct {
	db *gorm.DB
}

// NewGormCountRepository creates a new GormCountRepository
func NewGormCountRepository(db *gorm.DB) *GormCountRepository {
	return &GormCountRepository{db: db}
}

// FindByIDForTenant finds an inventory count with its details within a tenant
func (r *GormCountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryCount, error) {
	var count inventory.InventoryCount
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&count).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// FindAllForTenant lists inventory counts for a tenant, newest first
func (r *GormCountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.InventoryCount], error) {
	base := r.db.WithContext(ctx).Model(&inventory.InventoryCount{}).
		Where("tenant_id = ?", tenantID)
	base = r.applySearch(base, filter)
	base = r.applyDateRange(base, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var counts []inventory.InventoryCount
	query := r.applyFilter(base.Preload("Details"), filter)
	if err := query.Find(&counts).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(counts, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Save creates or updates an inventory count together with its detail lines.
// Detail lines are upserted; details are never removed from an existing
// count, so no orphan cleanup is needed.
func (r *GormCountRepository) Save(ctx context.Context, count *inventory.InventoryCount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := *count
		header.Details = nil
		if err := tx.Omit("Details").Save(&header).Error; err != nil {
			return err
		}
		for i := range count.Details {
			count.Details[i].CountID = count.ID
			if err := tx.Save(&count.Details[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteForTenant removes a count and its details within a tenant
func (r *GormCountRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count inventory.InventoryCount
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&count).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("count_id = ?", id).Delete(&inventory.CountDetail{}).Error; err != nil {
			return err
		}
		return tx.Delete(&count).Error
	})
}

// CountForTenant counts inventory counts for a tenant
func (r *GormCountRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&inventory.InventoryCount{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// applySearch applies the search filter against counter name and notes
func (r *GormCountRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(counted_by_name) LIKE ? OR LOWER(notes) LIKE ?",
			searchPattern, searchPattern)
	}
	return query
}

// applyDateRange narrows the listing to counts dated within the window
func (r *GormCountRepository) applyDateRange(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if start, ok := filter.Filters["start_date"].(time.Time); ok {
		query = query.Where("count_date >= ?", start)
	}
	if end, ok := filter.Filters["end_date"].(time.Time); ok {
		query = query.Where("count_date <= ?", end)
	}
	return query
}

// applyFilter applies pagination and ordering to a query
func (r *GormCountRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CountSortFields, "count_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))
}

// Ensure GormCountRepository implements CountRepository
var _ inventory.CountRepository = (*GormCountRepository)(nil)
