package inventory

import (
	"context"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
)

// TransactionScope runs stock mutations inside one database transaction.
// A transfer debits the source branch, credits the destination and appends
// its movements atomically; an adjustment updates the level and appends its
// movement the same way.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories stock operations
// touch, all bound to the same underlying transaction.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	StockLevelRepo() inventory.StockLevelRepository
	StockMovementRepo() inventory.StockMovementRepository
	StockTransferRepo() inventory.StockTransferRepository
	SequenceRepo() numbering.SequenceRepository
}
