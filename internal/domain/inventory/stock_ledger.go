package inventory

import (
	"context"
	"sort"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLedger is the domain service implementing the lock-verify-mutate
// protocol over stock rows. Callers run it against transaction-scoped
// repositories; every public method assumes it executes inside one database
// transaction and leaves zero side effects when it returns an error.
//
// Products that are not stock-tracked are skipped entirely: no check, no
// row mutation, no movement.
type StockLedger struct {
	levels    StockLevelRepository
	movements StockMovementRepository
}

// NewStockLedger creates a StockLedger over the given repositories
func NewStockLedger(levels StockLevelRepository, movements StockMovementRepository) *StockLedger {
	return &StockLedger{levels: levels, movements: movements}
}

// sortedKeys returns the keys in the global lock-acquisition order
func sortedKeys(keys []StockKey) []StockKey {
	out := make([]StockKey, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// DecrementForSale locks the stock rows for every distinct tracked product
// in the demand map, verifies each can cover its aggregated quantity, then
// debits them and appends one OUT movement per product. The first product
// failing the check aborts the whole call with an error naming it.
func (l *StockLedger) DecrementForSale(
	ctx context.Context,
	tenantID, branchID uuid.UUID,
	demand map[uuid.UUID]decimal.Decimal,
	products map[uuid.UUID]*catalog.Product,
	saleID uuid.UUID,
) error {
	tracked := make([]StockKey, 0, len(demand))
	for productID := range demand {
		product, ok := products[productID]
		if !ok {
			return shared.NewDomainErrorf("NOT_FOUND", "Unknown product %s", productID)
		}
		if product.StockTracked {
			tracked = append(tracked, StockKey{BranchID: branchID, ProductID: productID})
		}
	}
	if len(tracked) == 0 {
		return nil
	}

	keys := sortedKeys(tracked)
	locked, err := l.levels.LockForUpdate(ctx, tenantID, keys)
	if err != nil {
		return err
	}

	// Verify everything before mutating anything.
	for _, key := range keys {
		qty := demand[key.ProductID]
		level, ok := locked[key]
		if !ok || !level.CanFulfill(qty) {
			return shared.NewInsufficientStockError(products[key.ProductID].Name)
		}
	}

	for _, key := range keys {
		qty := demand[key.ProductID]
		level := locked[key]
		if err := level.Debit(qty); err != nil {
			return err
		}
		if err := l.levels.Save(ctx, level); err != nil {
			return err
		}
		movement, err := NewStockMovement(
			tenantID, branchID, key.ProductID,
			MovementOut, qty, ReasonSale, SourceDocSale, &saleID, "")
		if err != nil {
			return err
		}
		if err := l.movements.Append(ctx, movement); err != nil {
			return err
		}
	}

	return nil
}

// Adjust applies a signed delta to one product's stock at a branch and
// appends the matching movement, returning the mutated level. A positive
// delta on a product with no row inserts the row; a negative delta can
// never take the row below zero. Adjusting a product that is not
// stock-tracked is a caller error.
func (l *StockLedger) Adjust(
	ctx context.Context,
	tenantID, branchID uuid.UUID,
	product *catalog.Product,
	delta decimal.Decimal,
	reason string,
) (*StockLevel, error) {
	if !product.StockTracked {
		return nil, shared.NewDomainErrorf("NOT_STOCK_TRACKED", "Product %s is not stock-tracked", product.Name)
	}
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}

	key := StockKey{BranchID: branchID, ProductID: product.ID}
	locked, err := l.levels.LockForUpdate(ctx, tenantID, []StockKey{key})
	if err != nil {
		return nil, err
	}

	level, exists := locked[key]
	if !exists {
		if delta.IsNegative() {
			return nil, shared.NewInsufficientStockError(product.Name)
		}
		level, err = NewStockLevel(tenantID, branchID, product.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := level.ApplyDelta(delta); err != nil {
		if de, ok := err.(*shared.DomainError); ok && de.Code == "INSUFFICIENT_STOCK" {
			return nil, shared.NewInsufficientStockError(product.Name)
		}
		return nil, err
	}
	level.AddDomainEvent(NewStockAdjustedEvent(level, delta, reason))

	if exists {
		err = l.levels.Save(ctx, level)
	} else {
		err = l.levels.Create(ctx, level)
	}
	if err != nil {
		return nil, err
	}

	direction := MovementIn
	qty := delta
	if delta.IsNegative() {
		direction = MovementOut
		qty = delta.Neg()
	}
	movement, err := NewStockMovement(
		tenantID, branchID, product.ID,
		direction, qty, ReasonAdjustment, SourceDocManual, nil, reason)
	if err != nil {
		return nil, err
	}
	if err := l.movements.Append(ctx, movement); err != nil {
		return nil, err
	}
	return level, nil
}

// ApplyTransfer debits every tracked line at the source branch and credits
// it at the destination, writing two movements per product. Availability is
// verified against the source only; the destination is credited
// unconditionally once the source passes, inserting rows that do not exist
// yet. Any single line failing availability aborts the whole transfer.
func (l *StockLedger) ApplyTransfer(
	ctx context.Context,
	transfer *StockTransfer,
	products map[uuid.UUID]*catalog.Product,
) error {
	demand := transfer.QuantityByProduct()

	keys := make([]StockKey, 0, len(demand)*2)
	for productID := range demand {
		product, ok := products[productID]
		if !ok {
			return shared.NewDomainErrorf("NOT_FOUND", "Unknown product %s", productID)
		}
		if !product.StockTracked {
			continue
		}
		keys = append(keys,
			StockKey{BranchID: transfer.FromBranchID, ProductID: productID},
			StockKey{BranchID: transfer.ToBranchID, ProductID: productID},
		)
	}
	if len(keys) == 0 {
		return nil
	}

	keys = sortedKeys(keys)
	locked, err := l.levels.LockForUpdate(ctx, transfer.TenantID, keys)
	if err != nil {
		return err
	}

	// Source-side availability check for every tracked product.
	for productID, qty := range demand {
		if !products[productID].StockTracked {
			continue
		}
		source, ok := locked[StockKey{BranchID: transfer.FromBranchID, ProductID: productID}]
		if !ok || !source.CanFulfill(qty) {
			return shared.NewInsufficientStockError(products[productID].Name)
		}
	}

	for _, key := range keys {
		qty := demand[key.ProductID]
		switch key.BranchID {
		case transfer.FromBranchID:
			source := locked[key]
			if err := source.Debit(qty); err != nil {
				return err
			}
			if err := l.levels.Save(ctx, source); err != nil {
				return err
			}
			movement, err := NewStockMovement(
				transfer.TenantID, key.BranchID, key.ProductID,
				MovementOut, qty, ReasonTransferOut, SourceDocTransfer, &transfer.ID, transfer.Reference)
			if err != nil {
				return err
			}
			if err := l.movements.Append(ctx, movement); err != nil {
				return err
			}
		case transfer.ToBranchID:
			dest, exists := locked[key]
			if !exists {
				dest, err = NewStockLevel(transfer.TenantID, key.BranchID, key.ProductID)
				if err != nil {
					return err
				}
			}
			if err := dest.Credit(qty); err != nil {
				return err
			}
			if exists {
				err = l.levels.Save(ctx, dest)
			} else {
				err = l.levels.Create(ctx, dest)
			}
			if err != nil {
				return err
			}
			movement, err := NewStockMovement(
				transfer.TenantID, key.BranchID, key.ProductID,
				MovementIn, qty, ReasonTransferIn, SourceDocTransfer, &transfer.ID, transfer.Reference)
			if err != nil {
				return err
			}
			if err := l.movements.Append(ctx, movement); err != nil {
				return err
			}
		}
	}

	return nil
}
