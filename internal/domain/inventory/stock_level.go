package inventory

import (
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel is the authoritative on-hand quantity for one product at one
// branch. The composite identifier is TenantID + BranchID + ProductID; the
// zero branch (uuid.Nil) is the HQ scope for tenants without configured
// branches and is checked exactly like any named branch.
//
// Rows are only ever mutated inside the lock-verify-mutate protocol: the
// repository locks the row, the caller verifies availability, then Credit or
// Debit applies the change. Quantity never drops below zero here; products
// that are not stock-tracked never get a row.
type StockLevel struct {
	shared.TenantAggregateRoot
	BranchID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_scope,priority:2"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_scope,priority:3"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a fresh zero-quantity stock row. A product with no
// row reads as zero stock; the row is inserted on first credit.
func NewStockLevel(tenantID, branchID, productID uuid.UUID) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return &StockLevel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		ProductID:           productID,
		Quantity:            decimal.Zero,
	}, nil
}

// CanFulfill reports whether the row covers the requested quantity
func (s *StockLevel) CanFulfill(quantity decimal.Decimal) bool {
	return s.Quantity.GreaterThanOrEqual(quantity)
}

// Credit increases the on-hand quantity
func (s *StockLevel) Credit(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Credit quantity must be positive")
	}
	s.Quantity = s.Quantity.Add(quantity)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Debit decreases the on-hand quantity. The caller must already hold the
// row lock and have verified availability; Debit still refuses to go
// negative as the last line of defense.
func (s *StockLevel) Debit(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Debit quantity must be positive")
	}
	if s.Quantity.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}
	s.Quantity = s.Quantity.Sub(quantity)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// ApplyDelta credits positive deltas and debits negative ones
func (s *StockLevel) ApplyDelta(delta decimal.Decimal) error {
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	if delta.IsPositive() {
		return s.Credit(delta)
	}
	return s.Debit(delta.Neg())
}
