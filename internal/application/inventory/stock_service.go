package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mecatos/backend/internal/domain/catalog"
	"github.com/mecatos/backend/internal/domain/inventory"
	"github.com/mecatos/backend/internal/domain/shared"
)

// CreateBatchRequest represents a request to register a received batch
type CreateBatchRequest struct {
	PresentationID uuid.UUID       `json:"presentation_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	ReceivedDate   *time.Time      `json:"received_date"`
	ExpirationDate *time.Time      `json:"expiration_date"`
}

// StockService provides queries over aggregated stock and manual batch
// management outside the count flow
type StockService struct {
	txScope   TransactionScope
	stockRepo inventory.ItemStockRepository
	itemRepo  catalog.ItemRepository
	logger    *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	txScope TransactionScope,
	stockRepo inventory.ItemStockRepository,
	itemRepo catalog.ItemRepository,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		txScope:   txScope,
		stockRepo: stockRepo,
		itemRepo:  itemRepo,
		logger:    logger,
	}
}

// GetItemStock returns the aggregated stock view of one item
func (s *StockService) GetItemStock(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemStockResponse, error) {
	stock, err := s.stockRepo.LoadForItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	response := ToItemStockResponse(stock)
	return &response, nil
}

// GetStockForItems returns stock views for several items at once
func (s *StockService) GetStockForItems(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) ([]ItemStockResponse, error) {
	stocks, err := s.stockRepo.LoadForItems(ctx, tenantID, itemIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]ItemStockResponse, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		if stock, ok := stocks[itemID]; ok {
			responses = append(responses, ToItemStockResponse(stock))
		}
	}
	return responses, nil
}

// CreateBatch registers a newly received batch under a presentation of an
// item owned by the tenant
func (s *StockService) CreateBatch(ctx context.Context, tenantID, itemID uuid.UUID, req CreateBatchRequest) (*BatchStockResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	if item.FindPresentation(req.PresentationID) == nil {
		return nil, shared.NewDomainError("PRESENTATION_NOT_FOUND", "Presentation does not belong to this item")
	}

	batch, err := inventory.NewBatch(req.PresentationID, req.Quantity, req.ReceivedDate, req.ExpirationDate)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}
		movement := inventory.NewBatchMovement(tenantID, batch.ID, itemID,
			inventory.MovementReasonReceiving, decimal.Zero, batch.CurrentQuantity, nil)
		return repos.MovementRepo().Save(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch received",
		zap.String("tenant_id", tenantID.String()),
		zap.String("item_id", itemID.String()),
		zap.String("batch_id", batch.ID.String()),
		zap.String("quantity", batch.CurrentQuantity.String()))

	return &BatchStockResponse{
		ID:              batch.ID,
		CurrentQuantity: batch.CurrentQuantity,
		ReceivedDate:    batch.ReceivedDate,
		ExpirationDate:  batch.ExpirationDate,
		Active:          batch.Active,
	}, nil
}

// DeactivateBatch excludes a batch from stock math without deleting it.
// The batch must hang off one of the item's presentations; a batch ID
// belonging to another item or tenant reads as not found.
func (s *StockService) DeactivateBatch(ctx context.Context, tenantID, itemID, batchID uuid.UUID) error {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return err
	}

	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.BatchRepo().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if item.FindPresentation(batch.PresentationID) == nil {
			return shared.ErrNotFound
		}

		before := batch.CurrentQuantity
		batch.Deactivate()
		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}

		movement := inventory.NewBatchMovement(tenantID, batch.ID, itemID,
			inventory.MovementReasonManual, before, batch.CurrentQuantity, nil)
		return repos.MovementRepo().Save(ctx, movement)
	})
}

// ListBatchMovements lists the ledger of one batch, newest first
func (s *StockService) ListBatchMovements(ctx context.Context, tenantID, batchID uuid.UUID, page, pageSize int) ([]MovementResponse, int64, error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	var result *shared.Paginated[inventory.BatchMovement]
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		result, err = repos.MovementRepo().FindByBatchID(ctx, tenantID, batchID, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return ToMovementResponses(result.Items), result.Total, nil
}
