package inventory

import (
	"context"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockKey identifies a stock row within a tenant
type StockKey struct {
	BranchID  uuid.UUID
	ProductID uuid.UUID
}

// Less provides the stable lock-acquisition order for stock rows. Every
// multi-row operation locks in this order so that two concurrent operations
// over overlapping product sets cannot deadlock.
func (k StockKey) Less(other StockKey) bool {
	if k.BranchID != other.BranchID {
		return k.BranchID.String() < other.BranchID.String()
	}
	return k.ProductID.String() < other.ProductID.String()
}

// StockLevelRepository persists stock rows. Implementations back
// LockForUpdate with SELECT ... FOR UPDATE (or equivalent) and must apply
// the StockKey ordering when acquiring locks.
type StockLevelRepository interface {
	// LockForUpdate locks the rows for the given keys within one
	// transaction and returns those that exist. A key with no row simply
	// has no entry in the result; callers treat that as zero stock.
	LockForUpdate(ctx context.Context, tenantID uuid.UUID, keys []StockKey) (map[StockKey]*StockLevel, error)
	FindByKey(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*StockLevel, error)
	FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]StockLevel, int64, error)
	// Save updates an existing, previously locked row.
	Save(ctx context.Context, level *StockLevel) error
	// Create inserts a brand-new row (first credit of a product at a
	// branch). The unique (tenant, branch, product) index rejects races.
	Create(ctx context.Context, level *StockLevel) error
}

// StockMovementRepository is append-only; movements are never updated or
// deleted.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceDocType, sourceID uuid.UUID) ([]StockMovement, error)
	// SumForScope returns the running signed sum of movements for a stock
	// scope; reconciliation compares it against the StockLevel quantity.
	SumForScope(ctx context.Context, tenantID, branchID, productID uuid.UUID) (decimal.Decimal, error)
}

// StockTransferRepository persists transfer headers with their lines
type StockTransferRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockTransfer, error)
	Save(ctx context.Context, transfer *StockTransfer) error
}
