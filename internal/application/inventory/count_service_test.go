package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mecatos/backend/internal/domain/inventory"
	"github.com/mecatos/backend/internal/domain/shared"
)

// ===================== In-memory fakes =====================

type fakeCountRepo struct {
	counts map[uuid.UUID]*inventory.InventoryCount
}

func newFakeCountRepo() *fakeCountRepo {
	return &fakeCountRepo{counts: make(map[uuid.UUID]*inventory.InventoryCount)}
}

func (r *fakeCountRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*inventory.InventoryCount, error) {
	count, ok := r.counts[id]
	if !ok || count.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return count, nil
}

func (r *fakeCountRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.InventoryCount], error) {
	items := make([]inventory.InventoryCount, 0)
	for _, count := range r.counts {
		if count.TenantID == tenantID {
			items = append(items, *count)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *fakeCountRepo) Save(_ context.Context, count *inventory.InventoryCount) error {
	r.counts[count.ID] = count
	return nil
}

func (r *fakeCountRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	count, ok := r.counts[id]
	if !ok || count.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.counts, id)
	return nil
}

func (r *fakeCountRepo) CountForTenant(_ context.Context, tenantID uuid.UUID) (int64, error) {
	var total int64
	for _, count := range r.counts {
		if count.TenantID == tenantID {
			total++
		}
	}
	return total, nil
}

type fakeBatchRepo struct {
	batches  map[uuid.UUID]*inventory.Batch
	failOnID uuid.UUID
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[uuid.UUID]*inventory.Batch)}
}

func (r *fakeBatchRepo) register(batch inventory.Batch) *inventory.Batch {
	stored := batch
	r.batches[stored.ID] = &stored
	return &stored
}

func (r *fakeBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Batch, error) {
	batch, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return batch, nil
}

func (r *fakeBatchRepo) FindByPresentationID(_ context.Context, presentationID uuid.UUID) ([]inventory.Batch, error) {
	result := make([]inventory.Batch, 0)
	for _, batch := range r.batches {
		if batch.PresentationID == presentationID {
			result = append(result, *batch)
		}
	}
	return result, nil
}

func (r *fakeBatchRepo) Save(_ context.Context, batch *inventory.Batch) error {
	if batch.ID == r.failOnID {
		return shared.ErrPersistenceFailed
	}
	r.batches[batch.ID] = batch
	return nil
}

func (r *fakeBatchRepo) SaveQuantity(_ context.Context, batch *inventory.Batch) error {
	if batch.ID == r.failOnID {
		return shared.ErrPersistenceFailed
	}
	r.batches[batch.ID] = batch
	return nil
}

type fakeMovementRepo struct {
	movements []inventory.BatchMovement
}

func (r *fakeMovementRepo) Save(_ context.Context, movement *inventory.BatchMovement) error {
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *fakeMovementRepo) FindByBatchID(_ context.Context, _, batchID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.BatchMovement], error) {
	items := make([]inventory.BatchMovement, 0)
	for _, m := range r.movements {
		if m.BatchID == batchID {
			items = append(items, m)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *fakeMovementRepo) FindByReferenceID(_ context.Context, _, referenceID uuid.UUID) ([]inventory.BatchMovement, error) {
	items := make([]inventory.BatchMovement, 0)
	for _, m := range r.movements {
		if m.ReferenceID != nil && *m.ReferenceID == referenceID {
			items = append(items, m)
		}
	}
	return items, nil
}

type fakeEventBus struct {
	published []shared.DomainEvent
}

func (b *fakeEventBus) Publish(_ context.Context, events ...shared.DomainEvent) error {
	b.published = append(b.published, events...)
	return nil
}

func (b *fakeEventBus) Subscribe(shared.EventHandler, ...string) {}

func (b *fakeEventBus) Unsubscribe(shared.EventHandler) {}

func (b *fakeEventBus) ofType(eventType string) []shared.DomainEvent {
	matched := make([]shared.DomainEvent, 0)
	for _, event := range b.published {
		if event.EventType() == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

// fakeStockRepo serves a fixed stock view per item. Batches in the view
// alias the batch repo so quantities reflect the repo's state at load time.
type fakeStockRepo struct {
	stocks map[uuid.UUID]*inventory.ItemStock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stocks: make(map[uuid.UUID]*inventory.ItemStock)}
}

func (r *fakeStockRepo) LoadForItem(_ context.Context, tenantID, itemID uuid.UUID) (*inventory.ItemStock, error) {
	stock, ok := r.stocks[itemID]
	if !ok {
		return &inventory.ItemStock{TenantID: tenantID, ItemID: itemID}, nil
	}
	return stock, nil
}

func (r *fakeStockRepo) LoadForItems(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]*inventory.ItemStock, error) {
	result := make(map[uuid.UUID]*inventory.ItemStock, len(itemIDs))
	for _, itemID := range itemIDs {
		stock, err := r.LoadForItem(ctx, tenantID, itemID)
		if err != nil {
			return nil, err
		}
		result[itemID] = stock
	}
	return result, nil
}

// ===================== Fixture =====================

type countServiceFixture struct {
	service      *CountService
	countRepo    *fakeCountRepo
	batchRepo    *fakeBatchRepo
	movementRepo *fakeMovementRepo
	stockRepo    *fakeStockRepo
	eventBus     *fakeEventBus
	tenantID     uuid.UUID
}

func newCountServiceFixture() *countServiceFixture {
	countRepo := newFakeCountRepo()
	batchRepo := newFakeBatchRepo()
	movementRepo := &fakeMovementRepo{}
	stockRepo := newFakeStockRepo()
	eventBus := &fakeEventBus{}

	txScope := NewNoOpTransactionScope(countRepo, batchRepo, movementRepo)
	service := NewCountService(txScope, stockRepo, nil, eventBus, zap.NewNop())

	return &countServiceFixture{
		service:      service,
		countRepo:    countRepo,
		batchRepo:    batchRepo,
		movementRepo: movementRepo,
		stockRepo:    stockRepo,
		eventBus:     eventBus,
		tenantID:     uuid.New(),
	}
}

// addItemStock registers an item with one presentation and its batches in
// both the stock view and the batch repo
func (f *countServiceFixture) addItemStock(factor string, quantities []string, receivedDays []int) (uuid.UUID, []*inventory.Batch) {
	itemID := uuid.New()
	presentationID := uuid.New()
	conversion := decimal.RequireFromString(factor)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	stored := make([]*inventory.Batch, 0, len(quantities))
	viewBatches := make([]inventory.Batch, 0, len(quantities))
	for i, qty := range quantities {
		received := base.AddDate(0, 0, receivedDays[i])
		batch, _ := inventory.NewBatch(presentationID, decimal.RequireFromString(qty), &received, nil)
		stored = append(stored, f.batchRepo.register(*batch))
		viewBatches = append(viewBatches, *batch)
	}

	f.stockRepo.stocks[itemID] = &inventory.ItemStock{
		TenantID: f.tenantID,
		ItemID:   itemID,
		Presentations: []inventory.PresentationStock{
			{
				PresentationID:   presentationID,
				Name:             "Unit",
				IsDefault:        true,
				ConversionFactor: &conversion,
				Batches:          viewBatches,
			},
		},
	}
	return itemID, stored
}

func countedQty(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

// ===================== Tests =====================

func TestCountService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist a zero difference without touching batches", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, batches := f.addItemStock("1", []string{"10"}, []int{0})

		resp, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("10")}},
		})

		require.NoError(t, err)
		require.Len(t, resp.Details, 1)
		assert.True(t, resp.Details[0].Difference.IsZero())
		assert.Empty(t, resp.Warnings)
		assert.True(t, decimal.RequireFromString("10").Equal(batches[0].CurrentQuantity))
		assert.Empty(t, f.movementRepo.movements)
		assert.Len(t, f.countRepo.counts, 1)
	})

	t.Run("should reject a line with no counted quantity", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, _ := f.addItemStock("1", []string{"10"}, []int{0})

		_, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID}},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
		assert.Empty(t, f.countRepo.counts)
	})

	t.Run("should publish a batch adjustment event when batches moved", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, _ := f.addItemStock("1", []string{"10"}, []int{0})

		_, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("4")}},
		})

		require.NoError(t, err)
		adjusted := f.eventBus.ofType(inventory.EventTypeBatchesAdjusted)
		require.Len(t, adjusted, 1)
		event, ok := adjusted[0].(*inventory.BatchesAdjustedEvent)
		require.True(t, ok)
		assert.Equal(t, itemID, event.ItemID)
		assert.Equal(t, 1, event.StepsApplied)
		assert.True(t, event.Difference.Equal(decimal.NewFromInt(-6)))
		assert.Len(t, f.eventBus.ofType(inventory.EventTypeCountRecorded), 1)
	})

	t.Run("should publish no adjustment event for a zero difference", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, _ := f.addItemStock("1", []string{"10"}, []int{0})

		_, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("10")}},
		})

		require.NoError(t, err)
		assert.Empty(t, f.eventBus.ofType(inventory.EventTypeBatchesAdjusted))
	})

	t.Run("should deplete batches oldest first on shortage", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, batches := f.addItemStock("1", []string{"3", "5"}, []int{0, 1})

		resp, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("4")}},
		})

		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("-4").Equal(resp.Details[0].Difference))
		assert.Empty(t, resp.Warnings)
		assert.True(t, batches[0].CurrentQuantity.IsZero())
		assert.True(t, decimal.RequireFromString("4").Equal(batches[1].CurrentQuantity))
		require.Len(t, f.movementRepo.movements, 2)
		assert.Equal(t, resp.ID, *f.movementRepo.movements[0].ReferenceID)
	})

	t.Run("should empty all batches when counted zero", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, batches := f.addItemStock("1", []string{"2", "1"}, []int{0, 1})

		resp, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("0")}},
		})

		require.NoError(t, err)
		assert.Empty(t, resp.Warnings)
		assert.True(t, batches[0].CurrentQuantity.IsZero())
		assert.True(t, batches[1].CurrentQuantity.IsZero())
	})

	t.Run("should add surplus to the most recent batch", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, batches := f.addItemStock("1", []string{"3", "2"}, []int{0, 5})

		resp, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("9")}},
		})

		require.NoError(t, err)
		assert.Empty(t, resp.Warnings)
		assert.True(t, decimal.RequireFromString("3").Equal(batches[0].CurrentQuantity))
		assert.True(t, decimal.RequireFromString("6").Equal(batches[1].CurrentQuantity))
	})

	t.Run("should create a batch under the default presentation for surplus with no stock", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, _ := f.addItemStock("2", nil, nil)
		presentationID := f.stockRepo.stocks[itemID].Presentations[0].PresentationID

		resp, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("10")}},
		})

		require.NoError(t, err)
		assert.Empty(t, resp.Warnings)

		var created *inventory.Batch
		for _, batch := range f.batchRepo.batches {
			if batch.PresentationID == presentationID {
				created = batch
			}
		}
		require.NotNil(t, created)
		// 10 base units at factor 2 is 5 presentation units
		assert.True(t, decimal.RequireFromString("5").Equal(created.CurrentQuantity))
		assert.True(t, created.Active)
		assert.NotNil(t, created.ReceivedDate)
	})

	t.Run("should warn when surplus has nowhere to go", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID := uuid.New() // no presentations registered

		resp, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("4")}},
		})

		require.NoError(t, err)
		require.Len(t, resp.Warnings, 1)
		assert.Equal(t, WarningCodeNoPresentation, resp.Warnings[0].Code)
		assert.Empty(t, f.batchRepo.batches)
	})

	t.Run("should keep earlier adjustments when a later write fails", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, batches := f.addItemStock("1", []string{"2", "5"}, []int{0, 1})
		f.batchRepo.failOnID = batches[1].ID

		resp, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("3")}},
		})

		require.NoError(t, err)
		require.Len(t, resp.Warnings, 1)
		assert.Equal(t, WarningCodeAdjustmentFailed, resp.Warnings[0].Code)
		// first batch was zeroed before the failure, second untouched
		assert.True(t, batches[0].CurrentQuantity.IsZero())
		assert.True(t, decimal.RequireFromString("5").Equal(batches[1].CurrentQuantity))
		assert.Len(t, f.countRepo.counts, 1)
	})

	t.Run("should reject duplicate items in one request", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, _ := f.addItemStock("1", []string{"5"}, []int{0})

		_, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{
				{ItemID: itemID, CountedQuantity: countedQty("5")},
				{ItemID: itemID, CountedQuantity: countedQty("6")},
			},
		})

		assert.Error(t, err)
	})
}

func TestCountService_Update(t *testing.T) {
	ctx := context.Background()

	createCount := func(t *testing.T, f *countServiceFixture, itemID uuid.UUID, counted string) *CountResponse {
		t.Helper()
		resp, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty(counted)}},
		})
		require.NoError(t, err)
		return resp
	}

	t.Run("should apply only the change between old and new differences", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, batches := f.addItemStock("1", []string{"10"}, []int{0})
		created := createCount(t, f, itemID, "8") // shortage of 2, batch now 8

		// keep the stock view aligned with the adjusted batch
		f.stockRepo.stocks[itemID].Presentations[0].Batches = []inventory.Batch{*batches[0]}

		resp, err := f.service.Update(ctx, f.tenantID, created.ID, UpdateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("6")}},
		})

		require.NoError(t, err)
		// new difference -4, old -2, so 2 more units leave the batch
		assert.True(t, decimal.RequireFromString("-4").Equal(resp.Details[0].Difference))
		assert.True(t, decimal.RequireFromString("6").Equal(batches[0].CurrentQuantity))
	})

	t.Run("should move nothing when the counted quantity is unchanged", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, batches := f.addItemStock("1", []string{"10"}, []int{0})
		created := createCount(t, f, itemID, "8")
		movementsBefore := len(f.movementRepo.movements)

		_, err := f.service.Update(ctx, f.tenantID, created.ID, UpdateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("8")}},
		})

		require.NoError(t, err)
		assert.Len(t, f.movementRepo.movements, movementsBefore)
		assert.True(t, decimal.RequireFromString("8").Equal(batches[0].CurrentQuantity))
	})

	t.Run("should keep the original system quantity snapshot", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, _ := f.addItemStock("1", []string{"10"}, []int{0})
		created := createCount(t, f, itemID, "8")

		resp, err := f.service.Update(ctx, f.tenantID, created.ID, UpdateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("12")}},
		})

		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("10").Equal(resp.Details[0].SystemQuantity))
		assert.True(t, decimal.RequireFromString("2").Equal(resp.Details[0].Difference))
	})

	t.Run("should warn with shortfall when stock was drained since the count", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, batches := f.addItemStock("1", []string{"10"}, []int{0})
		created := createCount(t, f, itemID, "8") // batch now 8

		// something else consumed the remaining stock before the revision
		batches[0].Zero()
		f.stockRepo.stocks[itemID].Presentations[0].Batches = []inventory.Batch{*batches[0]}

		resp, err := f.service.Update(ctx, f.tenantID, created.ID, UpdateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("0")}},
		})

		require.NoError(t, err)
		require.Len(t, resp.Warnings, 1)
		warning := resp.Warnings[0]
		assert.Equal(t, WarningCodeInsufficientStock, warning.Code)
		assert.Equal(t, itemID, warning.ItemID)
		require.NotNil(t, warning.Shortfall)
		// old difference -2, new -10, and nothing left to remove the 8 from
		assert.True(t, decimal.RequireFromString("8").Equal(*warning.Shortfall))
	})

	t.Run("should fail for an item not on the count", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, _ := f.addItemStock("1", []string{"10"}, []int{0})
		created := createCount(t, f, itemID, "10")

		_, err := f.service.Update(ctx, f.tenantID, created.ID, UpdateCountRequest{
			Items: []CountItemRequest{{ItemID: uuid.New(), CountedQuantity: countedQty("1")}},
		})

		assert.Error(t, err)
	})

	t.Run("should fail for an unknown count", func(t *testing.T) {
		f := newCountServiceFixture()

		_, err := f.service.Update(ctx, f.tenantID, uuid.New(), UpdateCountRequest{})
		assert.Error(t, err)
	})
}

func TestCountService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("should delete the count but keep applied adjustments", func(t *testing.T) {
		f := newCountServiceFixture()
		itemID, batches := f.addItemStock("1", []string{"10"}, []int{0})
		created, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("7")}},
		})
		require.NoError(t, err)

		err = f.service.Delete(ctx, f.tenantID, created.ID)

		require.NoError(t, err)
		assert.Empty(t, f.countRepo.counts)
		assert.True(t, decimal.RequireFromString("7").Equal(batches[0].CurrentQuantity))
	})

	t.Run("should fail for an unknown count", func(t *testing.T) {
		f := newCountServiceFixture()
		err := f.service.Delete(ctx, f.tenantID, uuid.New())
		assert.Error(t, err)
	})
}

func TestCountService_GetMovements(t *testing.T) {
	t.Run("should return only the movements of the given count", func(t *testing.T) {
		ctx := context.Background()
		f := newCountServiceFixture()
		itemID, _ := f.addItemStock("1", []string{"10"}, []int{0})
		created, err := f.service.Create(ctx, f.tenantID, CreateCountRequest{
			Items: []CountItemRequest{{ItemID: itemID, CountedQuantity: countedQty("4")}},
		})
		require.NoError(t, err)

		movements, err := f.service.GetMovements(ctx, f.tenantID, created.ID)

		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, string(inventory.MovementReasonCountAdjustment), movements[0].Reason)
	})
}
