package inventory

import (
	"context"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService coordinates stock adjustments and branch-to-branch
// transfers. Every mutation runs inside one transaction: the locked stock
// rows, the appended movements and (for transfers) the persisted header
// commit or roll back together.
type InventoryService struct {
	scope          TransactionScope
	levelRepo      inventory.StockLevelRepository
	movementRepo   inventory.StockMovementRepository
	transferRepo   inventory.StockTransferRepository
	eventPublisher shared.EventPublisher
}

// NewInventoryService creates a new InventoryService. The repositories
// serve the read paths; all writes go through the transaction scope.
func NewInventoryService(
	scope TransactionScope,
	levelRepo inventory.StockLevelRepository,
	movementRepo inventory.StockMovementRepository,
	transferRepo inventory.StockTransferRepository,
) *InventoryService {
	return &InventoryService{
		scope:        scope,
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
		transferRepo: transferRepo,
	}
}

// SetEventPublisher sets the publisher for post-commit domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Adjust applies a signed delta to one product's stock at a branch. A
// positive delta on a product with no stock row inserts the row; a negative
// delta can never take stock below zero. Adjusting a product that is not
// stock-tracked fails.
func (s *InventoryService) Adjust(ctx context.Context, tenantID, branchID uuid.UUID, req AdjustStockRequest) (*StockLevelResponse, error) {
	log := logger.FromContext(ctx)

	var adjusted *inventory.StockLevel
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByIDForTenant(ctx, tenantID, req.ProductID)
		if err != nil {
			return err
		}

		stockLedger := inventory.NewStockLedger(repos.StockLevelRepo(), repos.StockMovementRepo())
		adjusted, err = stockLedger.Adjust(ctx, tenantID, branchID, product, req.Delta, req.Reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("stock adjusted",
		zap.String("product_id", req.ProductID.String()),
		zap.String("branch_id", branchID.String()),
		zap.String("delta", req.Delta.String()),
	)
	s.publishEvents(ctx, adjusted)

	response := ToStockLevelResponse(adjusted)
	return &response, nil
}

// Transfer moves stock between two branches of the tenant. The reference
// code is drawn inside the same transaction as the stock mutation, so an
// aborted transfer never consumes a visible reference.
func (s *InventoryService) Transfer(ctx context.Context, tenantID uuid.UUID, req TransferStockRequest) (*TransferResponse, error) {
	log := logger.FromContext(ctx)

	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_TRANSFER", "Transfer must contain at least one line")
	}

	var committed *inventory.StockTransfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		productIDs := make([]uuid.UUID, 0, len(req.Lines))
		for _, line := range req.Lines {
			productIDs = append(productIDs, line.ProductID)
		}
		products, err := repos.ProductRepo().FindByIDs(ctx, tenantID, productIDs)
		if err != nil {
			return err
		}
		for _, line := range req.Lines {
			if _, ok := products[line.ProductID]; !ok {
				return shared.NewDomainErrorf("NOT_FOUND", "Unknown product %s", line.ProductID)
			}
		}

		generator := numbering.NewGenerator(repos.SequenceRepo())
		reference, err := generator.Next(ctx, tenantID, numbering.DocumentTypeTransfer)
		if err != nil {
			return err
		}

		lines := make([]inventory.StockTransferLine, 0, len(req.Lines))
		for _, line := range req.Lines {
			lines = append(lines, inventory.StockTransferLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}
		transfer, err := inventory.NewStockTransfer(tenantID, reference, req.FromBranchID, req.ToBranchID, lines)
		if err != nil {
			return err
		}
		transfer.Notes = req.Notes

		if err := repos.StockTransferRepo().Save(ctx, transfer); err != nil {
			return err
		}

		stockLedger := inventory.NewStockLedger(repos.StockLevelRepo(), repos.StockMovementRepo())
		if err := stockLedger.ApplyTransfer(ctx, transfer, products); err != nil {
			return err
		}

		committed = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("stock transferred",
		zap.String("transfer_id", committed.ID.String()),
		zap.String("reference", committed.Reference),
		zap.String("from_branch_id", committed.FromBranchID.String()),
		zap.String("to_branch_id", committed.ToBranchID.String()),
	)
	s.publishTransferEvents(ctx, committed)

	response := ToTransferResponse(committed)
	return &response, nil
}

// GetTransfer retrieves a transfer with its lines
func (s *InventoryService) GetTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	transfer, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}
	response := ToTransferResponse(transfer)
	return &response, nil
}

// GetLevel retrieves one product's stock level at a branch. A product with
// no stock row reads as zero on hand.
func (s *InventoryService) GetLevel(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*StockLevelResponse, error) {
	level, err := s.levelRepo.FindByKey(ctx, tenantID, branchID, productID)
	if err != nil {
		if de, ok := err.(*shared.DomainError); ok && de.Code == "NOT_FOUND" {
			return &StockLevelResponse{ProductID: productID, BranchID: branchID}, nil
		}
		return nil, err
	}
	response := ToStockLevelResponse(level)
	return &response, nil
}

// ListLevels retrieves stock levels for a branch with pagination
func (s *InventoryService) ListLevels(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]StockLevelResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	levels, total, err := s.levelRepo.FindByBranch(ctx, tenantID, branchID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StockLevelResponse, 0, len(levels))
	for i := range levels {
		responses = append(responses, ToStockLevelResponse(&levels[i]))
	}
	return responses, total, nil
}

// ListMovementsBySource retrieves the movement history one source document
// produced, e.g. the two rows per line of a transfer.
func (s *InventoryService) ListMovementsBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceDocType, sourceID uuid.UUID) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindBySource(ctx, tenantID, sourceType, sourceID)
	if err != nil {
		return nil, err
	}
	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses, nil
}

func (s *InventoryService) publishEvents(ctx context.Context, level *inventory.StockLevel) {
	if s.eventPublisher == nil || level == nil {
		return
	}
	events := level.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.FromContext(ctx).Warn("failed to publish stock events", zap.Error(err))
	}
	level.ClearDomainEvents()
}

func (s *InventoryService) publishTransferEvents(ctx context.Context, transfer *inventory.StockTransfer) {
	if s.eventPublisher == nil {
		return
	}
	events := transfer.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.FromContext(ctx).Warn("failed to publish transfer events", zap.Error(err))
	}
	transfer.ClearDomainEvents()
}
