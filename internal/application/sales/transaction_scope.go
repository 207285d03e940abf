package sales

import (
	"context"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/sales"
)

// TransactionScope runs checkout work inside one database transaction. The
// sale header, its lines, the stock decrements and the drawn invoice number
// all commit or roll back together; no partial state is ever observable.
type TransactionScope interface {
	// Execute runs fn within a transaction, rolling back when fn errors.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes every repository checkout touches, all
// bound to the same underlying transaction.
type TransactionalRepositories interface {
	SaleRepo() sales.SaleRepository
	ProductRepo() catalog.ProductRepository
	StockLevelRepo() inventory.StockLevelRepository
	StockMovementRepo() inventory.StockMovementRepository
	SequenceRepo() numbering.SequenceRepository
}
