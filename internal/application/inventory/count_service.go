package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mecatos/backend/internal/domain/inventory"
	"github.com/mecatos/backend/internal/domain/shared"
)

// CountService provides application services for inventory counts: it
// snapshots system quantities, persists the count atomically, and then
// reconciles batches item by item.
type CountService struct {
	txScope   TransactionScope
	stockRepo inventory.ItemStockRepository
	locker    ItemLocker
	eventBus  shared.EventBus
	logger    *zap.Logger
}

// NewCountService creates a new CountService
func NewCountService(
	txScope TransactionScope,
	stockRepo inventory.ItemStockRepository,
	locker ItemLocker,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *CountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountService{
		txScope:   txScope,
		stockRepo: stockRepo,
		locker:    locker,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// itemAdjustment pairs a planned adjustment with the item it belongs to,
// preserving the order in which counted items were submitted
type itemAdjustment struct {
	itemID uuid.UUID
	plan   *inventory.AdjustmentPlan
}

// ===================== Query Methods =====================

// GetByID retrieves a count with its details
func (s *CountService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CountResponse, error) {
	var count *inventory.InventoryCount
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		count, err = repos.CountRepo().FindByIDForTenant(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	response := ToCountResponse(count, nil)
	return &response, nil
}

// List retrieves a paginated list of counts, newest first
func (s *CountService) List(ctx context.Context, tenantID uuid.UUID, filter CountListFilter) ([]CountListResponse, int64, error) {
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
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	var page *shared.Paginated[inventory.InventoryCount]
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		page, err = repos.CountRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return ToCountListResponses(page.Items), page.Total, nil
}

// GetMovements lists the batch movements caused by one count
func (s *CountService) GetMovements(ctx context.Context, tenantID, countID uuid.UUID) ([]MovementResponse, error) {
	var movements []inventory.BatchMovement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movements, err = repos.MovementRepo().FindByReferenceID(ctx, tenantID, countID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// ===================== Command Methods =====================

// Create records a new inventory count. The header and detail lines are
// written in one transaction; batch reconciliation then runs sequentially
// per item. Reconciliation problems surface as warnings on the response,
// never as a failure of the count itself.
func (s *CountService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCountRequest) (*CountResponse, error) {
	countDate := time.Now()
	if req.CountDate != nil {
		countDate = *req.CountDate
	}

	count, err := inventory.NewInventoryCount(tenantID, countDate, req.CountedByID, req.CountedByName, req.Notes)
	if err != nil {
		return nil, err
	}

	release, err := s.lockItems(ctx, tenantID, itemIDsOf(req.Items))
	if err != nil {
		return nil, err
	}
	defer release()

	adjustments := make([]itemAdjustment, 0, len(req.Items))
	for _, line := range req.Items {
		if line.CountedQuantity == nil {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity is required")
		}

		stock, err := s.stockRepo.LoadForItem(ctx, tenantID, line.ItemID)
		if err != nil {
			return nil, err
		}

		detail, err := count.AddDetail(line.ItemID, *line.CountedQuantity, stock.SystemQuantity())
		if err != nil {
			return nil, err
		}

		plan, err := inventory.PlanAdjustment(stock, detail.Difference)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, itemAdjustment{itemID: line.ItemID, plan: plan})
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.CountRepo().Save(ctx, count)
	})
	if err != nil {
		return nil, err
	}

	warnings := s.applyAdjustments(ctx, tenantID, count.ID, adjustments)

	count.AddDomainEvent(inventory.NewCountRecordedEvent(count))
	s.publishEvents(ctx, count)

	s.logger.Info("inventory count recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("count_id", count.ID.String()),
		zap.Int("items", len(count.Details)),
		zap.Int("warnings", len(warnings)))

	response := ToCountResponse(count, warnings)
	return &response, nil
}

// Update revises an existing count. For each submitted item the difference
// between the new and previously persisted differences is applied to
// batches, so re-submitting unchanged quantities moves nothing.
func (s *CountService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCountRequest) (*CountResponse, error) {
	var count *inventory.InventoryCount
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		count, err = repos.CountRepo().FindByIDForTenant(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	countDate := count.CountDate
	if req.CountDate != nil {
		countDate = *req.CountDate
	}
	count.UpdateHeader(countDate, req.CountedByID, req.CountedByName, req.Notes)

	release, err := s.lockItems(ctx, tenantID, itemIDsOf(req.Items))
	if err != nil {
		return nil, err
	}
	defer release()

	adjustments := make([]itemAdjustment, 0, len(req.Items))
	updated := 0
	for _, line := range req.Items {
		if line.CountedQuantity == nil {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity is required")
		}

		_, delta, err := count.UpdateDetail(line.ItemID, *line.CountedQuantity)
		if err != nil {
			return nil, err
		}
		updated++

		if delta.IsZero() {
			continue
		}

		stock, err := s.stockRepo.LoadForItem(ctx, tenantID, line.ItemID)
		if err != nil {
			return nil, err
		}
		plan, err := inventory.PlanAdjustment(stock, delta)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, itemAdjustment{itemID: line.ItemID, plan: plan})
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.CountRepo().Save(ctx, count)
	})
	if err != nil {
		return nil, err
	}

	warnings := s.applyAdjustments(ctx, tenantID, count.ID, adjustments)

	count.AddDomainEvent(inventory.NewCountUpdatedEvent(count, updated))
	s.publishEvents(ctx, count)

	response := ToCountResponse(count, warnings)
	return &response, nil
}

// Delete removes a count header and its details. Batch adjustments already
// applied by the count are not rolled back.
func (s *CountService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.CountRepo().FindByIDForTenant(ctx, tenantID, id); err != nil {
			return err
		}
		return repos.CountRepo().DeleteForTenant(ctx, tenantID, id)
	})
	if err != nil {
		return err
	}

	if s.eventBus != nil {
		_ = s.eventBus.Publish(ctx, inventory.NewCountDeletedEvent(id, tenantID))
	}
	return nil
}

// ===================== Reconciliation =====================

// applyAdjustments persists the planned batch changes item by item, in
// submission order. A failed write aborts the remaining steps of that
// item's plan but never fails the count; the problem is reported as a
// warning and the ledger keeps whatever was applied.
func (s *CountService) applyAdjustments(ctx context.Context, tenantID, countID uuid.UUID, adjustments []itemAdjustment) []ReconciliationWarning {
	warnings := make([]ReconciliationWarning, 0)

	for _, adj := range adjustments {
		warnings = append(warnings, s.applyPlan(ctx, tenantID, countID, adj.itemID, adj.plan)...)
	}
	return warnings
}

func (s *CountService) applyPlan(ctx context.Context, tenantID, countID, itemID uuid.UUID, plan *inventory.AdjustmentPlan) []ReconciliationWarning {
	warnings := make([]ReconciliationWarning, 0)

	if plan.NoPresentation {
		s.logger.Warn("surplus could not be stored, item has no presentations",
			zap.String("tenant_id", tenantID.String()),
			zap.String("item_id", itemID.String()),
			zap.String("surplus", plan.Diff.String()))
		warnings = append(warnings, ReconciliationWarning{
			ItemID:  itemID,
			Code:    WarningCodeNoPresentation,
			Message: "Surplus could not be stored: item has no presentations",
		})
		return warnings
	}

	for _, step := range plan.Steps {
		if err := s.applyStep(ctx, tenantID, countID, itemID, plan, step); err != nil {
			s.logger.Error("batch adjustment failed, aborting remaining steps for item",
				zap.String("tenant_id", tenantID.String()),
				zap.String("item_id", itemID.String()),
				zap.String("batch_id", step.BatchID.String()),
				zap.Error(err))
			warnings = append(warnings, ReconciliationWarning{
				ItemID:  itemID,
				Code:    WarningCodeAdjustmentFailed,
				Message: "A batch adjustment failed; earlier adjustments for this item were kept",
			})
			return warnings
		}
	}

	if len(plan.Steps) > 0 && s.eventBus != nil {
		_ = s.eventBus.Publish(ctx, inventory.NewBatchesAdjustedEvent(countID, tenantID, itemID, plan.Diff, len(plan.Steps)))
	}

	if plan.HasShortfall() {
		shortfall := plan.Shortfall
		s.logger.Warn("counted shortage exceeded available stock",
			zap.String("tenant_id", tenantID.String()),
			zap.String("item_id", itemID.String()),
			zap.String("shortfall", shortfall.String()))
		warnings = append(warnings, ReconciliationWarning{
			ItemID:    itemID,
			Code:      WarningCodeInsufficientStock,
			Message:   "Counted shortage exceeded available stock; all batches were emptied",
			Shortfall: &shortfall,
		})
		if s.eventBus != nil {
			_ = s.eventBus.Publish(ctx, inventory.NewStockShortfallEvent(countID, tenantID, itemID, shortfall))
		}
	}

	return warnings
}

// applyStep writes one batch change and its ledger entry in a transaction
// of its own, so earlier steps stay applied when a later one fails
func (s *CountService) applyStep(ctx context.Context, tenantID, countID, itemID uuid.UUID, plan *inventory.AdjustmentPlan, step inventory.AdjustmentStep) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if step.Action == inventory.AdjustmentActionCreate {
			if err := repos.BatchRepo().Save(ctx, plan.NewBatch); err != nil {
				return err
			}
		} else {
			batch, err := repos.BatchRepo().FindByID(ctx, step.BatchID)
			if err != nil {
				return err
			}
			if err := batch.SetQuantity(step.NewQuantity); err != nil {
				return err
			}
			if err := repos.BatchRepo().SaveQuantity(ctx, batch); err != nil {
				return err
			}
		}

		movement := inventory.NewBatchMovement(tenantID, step.BatchID, itemID,
			inventory.MovementReasonCountAdjustment, step.PreviousQuantity, step.NewQuantity, &countID)
		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return err
		}
		return nil
	})
}

// ===================== Helpers =====================

// lockItems acquires per-item locks in a stable order so two overlapping
// counts cannot deadlock. The returned release function unlocks everything
// acquired so far.
func (s *CountService) lockItems(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (func(), error) {
	if s.locker == nil || len(itemIDs) == 0 {
		return func() {}, nil
	}

	sorted := make([]uuid.UUID, len(itemIDs))
	copy(sorted, itemIDs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	releases := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, itemID := range sorted {
		release, err := s.locker.Acquire(ctx, itemLockKey(tenantID, itemID))
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

func itemIDsOf(items []CountItemRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ItemID)
	}
	return ids
}

func (s *CountService) publishEvents(ctx context.Context, count *inventory.InventoryCount) {
	if s.eventBus == nil {
		return
	}

	for _, event := range count.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	count.ClearDomainEvents()
}
