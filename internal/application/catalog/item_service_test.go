package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mecatos/backend/internal/domain/catalog"
	"github.com/mecatos/backend/internal/domain/shared"
)

type fakeItemRepo struct {
	items map[uuid.UUID]*catalog.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*catalog.Item)}
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	item, ok := r.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.Item, error) {
	for _, item := range r.items {
		if item.TenantID == tenantID && item.SKU == sku {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeItemRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]catalog.Item, error) {
	result := make([]catalog.Item, 0)
	for _, item := range r.items {
		if item.TenantID == tenantID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *catalog.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	item, ok := r.items[id]
	if !ok || item.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeItemRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var total int64
	for _, item := range r.items {
		if item.TenantID == tenantID {
			total++
		}
	}
	return total, nil
}

func (r *fakeItemRepo) ExistsBySKU(_ context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	for _, item := range r.items {
		if item.TenantID == tenantID && item.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func TestItemService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("should create an item with presentations", func(t *testing.T) {
		repo := newFakeItemRepo()
		service := NewItemService(repo, zap.NewNop())
		tenantID := uuid.New()
		factor := decimal.NewFromInt(24)

		resp, err := service.Create(ctx, tenantID, CreateItemRequest{
			Name:     "Flour",
			SKU:      "FLO-001",
			BaseUnit: "lb",
			Presentations: []CreatePresentationRequest{
				{Name: "Bag", Quantity: decimal.NewFromInt(1), ConversionFactor: nil},
				{Name: "Case", Quantity: decimal.NewFromInt(1), ConversionFactor: &factor},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "Flour", resp.Name)
		require.Len(t, resp.Presentations, 2)
		assert.True(t, resp.Presentations[0].IsDefault)
		assert.False(t, resp.Presentations[1].IsDefault)
		assert.Len(t, repo.items, 1)
	})

	t.Run("should reject a duplicate SKU within the tenant", func(t *testing.T) {
		repo := newFakeItemRepo()
		service := NewItemService(repo, zap.NewNop())
		tenantID := uuid.New()

		_, err := service.Create(ctx, tenantID, CreateItemRequest{Name: "Flour", SKU: "FLO-001", BaseUnit: "lb"})
		require.NoError(t, err)

		_, err = service.Create(ctx, tenantID, CreateItemRequest{Name: "Other", SKU: "FLO-001", BaseUnit: "kg"})
		assert.Error(t, err)
	})

	t.Run("should allow the same SKU in a different tenant", func(t *testing.T) {
		repo := newFakeItemRepo()
		service := NewItemService(repo, zap.NewNop())

		_, err := service.Create(ctx, uuid.New(), CreateItemRequest{Name: "Flour", SKU: "FLO-001", BaseUnit: "lb"})
		require.NoError(t, err)

		_, err = service.Create(ctx, uuid.New(), CreateItemRequest{Name: "Flour", SKU: "FLO-001", BaseUnit: "lb"})
		assert.NoError(t, err)
	})
}

func TestItemService_Presentations(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ItemService, uuid.UUID, *ItemResponse) {
		t.Helper()
		repo := newFakeItemRepo()
		service := NewItemService(repo, zap.NewNop())
		tenantID := uuid.New()
		resp, err := service.Create(ctx, tenantID, CreateItemRequest{
			Name:     "Butter",
			SKU:      "BUT-001",
			BaseUnit: "lb",
			Presentations: []CreatePresentationRequest{
				{Name: "Block", Quantity: decimal.NewFromInt(1)},
			},
		})
		require.NoError(t, err)
		return service, tenantID, resp
	}

	t.Run("should keep a single default when switching", func(t *testing.T) {
		service, tenantID, item := setup(t)
		factor := decimal.NewFromInt(36)

		withCase, err := service.AddPresentation(ctx, tenantID, item.ID, CreatePresentationRequest{
			Name: "Case", Quantity: decimal.NewFromInt(1), ConversionFactor: &factor,
		})
		require.NoError(t, err)
		require.Len(t, withCase.Presentations, 2)

		updated, err := service.SetDefaultPresentation(ctx, tenantID, item.ID, withCase.Presentations[1].ID)
		require.NoError(t, err)

		defaults := 0
		for _, p := range updated.Presentations {
			if p.IsDefault {
				defaults++
				assert.Equal(t, "Case", p.Name)
			}
		}
		assert.Equal(t, 1, defaults)
	})

	t.Run("should promote another presentation when the default is removed", func(t *testing.T) {
		service, tenantID, item := setup(t)

		withCase, err := service.AddPresentation(ctx, tenantID, item.ID, CreatePresentationRequest{
			Name: "Case", Quantity: decimal.NewFromInt(1),
		})
		require.NoError(t, err)

		updated, err := service.RemovePresentation(ctx, tenantID, item.ID, withCase.Presentations[0].ID)
		require.NoError(t, err)

		require.Len(t, updated.Presentations, 1)
		assert.True(t, updated.Presentations[0].IsDefault)
	})

	t.Run("should fail removing an unknown presentation", func(t *testing.T) {
		service, tenantID, item := setup(t)

		_, err := service.RemovePresentation(ctx, tenantID, item.ID, uuid.New())
		assert.Error(t, err)
	})
}

func TestItemService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("should deactivate and reactivate an item", func(t *testing.T) {
		repo := newFakeItemRepo()
		service := NewItemService(repo, zap.NewNop())
		tenantID := uuid.New()
		created, err := service.Create(ctx, tenantID, CreateItemRequest{Name: "Yeast", SKU: "YEA-001", BaseUnit: "g"})
		require.NoError(t, err)

		deactivated, err := service.Deactivate(ctx, tenantID, created.ID)
		require.NoError(t, err)
		assert.False(t, deactivated.Active)

		activated, err := service.Activate(ctx, tenantID, created.ID)
		require.NoError(t, err)
		assert.True(t, activated.Active)
	})

	t.Run("should not find another tenant's item", func(t *testing.T) {
		repo := newFakeItemRepo()
		service := NewItemService(repo, zap.NewNop())
		created, err := service.Create(ctx, uuid.New(), CreateItemRequest{Name: "Yeast", SKU: "YEA-001", BaseUnit: "g"})
		require.NoError(t, err)

		_, err = service.GetByID(ctx, uuid.New(), created.ID)
		assert.Error(t, err)
	})
}
