package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mecatos/backend/internal/domain/catalog"
	"github.com/mecatos/backend/internal/domain/shared"
)

// ItemService provides application services for catalog item management
type ItemService struct {
	itemRepo catalog.ItemRepository
	logger   *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{itemRepo: itemRepo, logger: logger}
}

// ===================== Query Methods =====================

// GetByID retrieves an item with its presentations
func (s *ItemService) GetByID(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// GetBySKU retrieves an item by its SKU
func (s *ItemService) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// List retrieves a paginated list of items
func (s *ItemService) List(ctx context.Context, tenantID uuid.UUID, filter ItemListFilter) ([]ItemListResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	total, err := s.itemRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items, err := s.itemRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToItemListResponses(items), total, nil
}

// ===================== Command Methods =====================

// Create creates a new catalog item with its presentations
func (s *ItemService) Create(ctx context.Context, tenantID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	exists, err := s.itemRepo.ExistsBySKU(ctx, tenantID, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("SKU_TAKEN", "An item with this SKU already exists")
	}

	item, err := catalog.NewItem(tenantID, req.Name, req.SKU, req.BaseUnit)
	if err != nil {
		return nil, err
	}
	item.CategoryID = req.CategoryID
	item.StorageAreaID = req.StorageAreaID

	for _, p := range req.Presentations {
		if _, err := item.AddPresentation(p.Name, p.Quantity, p.ConversionFactor); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("item_id", item.ID.String()),
		zap.String("sku", item.SKU))

	response := ToItemResponse(item)
	return &response, nil
}

// Update updates the descriptive fields of an item
func (s *ItemService) Update(ctx context.Context, tenantID, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	if err := item.Rename(req.Name); err != nil {
		return nil, err
	}
	item.CategoryID = req.CategoryID
	item.StorageAreaID = req.StorageAreaID

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// Delete removes an item and its presentations
func (s *ItemService) Delete(ctx context.Context, tenantID, itemID uuid.UUID) error {
	if _, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID); err != nil {
		return err
	}
	return s.itemRepo.DeleteForTenant(ctx, tenantID, itemID)
}

// Activate marks an item as active
func (s *ItemService) Activate(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	item.Activate()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// Deactivate hides an item from counting and purchasing flows
func (s *ItemService) Deactivate(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	item.Deactivate()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// AddPresentation adds a packaging presentation to an item
func (s *ItemService) AddPresentation(ctx context.Context, tenantID, itemID uuid.UUID, req CreatePresentationRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	if _, err := item.AddPresentation(req.Name, req.Quantity, req.ConversionFactor); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// RemovePresentation removes a presentation from an item
func (s *ItemService) RemovePresentation(ctx context.Context, tenantID, itemID, presentationID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	if err := item.RemovePresentation(presentationID); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// SetDefaultPresentation marks one presentation as the default
func (s *ItemService) SetDefaultPresentation(ctx context.Context, tenantID, itemID, presentationID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	if err := item.SetDefaultPresentation(presentationID); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}
