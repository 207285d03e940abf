package inventory

import (
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementDirection records whether stock entered or left a branch
type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

// IsValid returns true for a known direction
func (d MovementDirection) IsValid() bool {
	return d == MovementIn || d == MovementOut
}

// MovementReason classifies why stock moved
type MovementReason string

const (
	ReasonSale        MovementReason = "SALE"
	ReasonAdjustment  MovementReason = "ADJUSTMENT"
	ReasonTransferIn  MovementReason = "TRANSFER_IN"
	ReasonTransferOut MovementReason = "TRANSFER_OUT"
)

// SourceDocType identifies the document a movement links back to
type SourceDocType string

const (
	SourceDocSale     SourceDocType = "SALE"
	SourceDocTransfer SourceDocType = "TRANSFER"
	SourceDocManual   SourceDocType = "MANUAL"
)

// StockMovement is the immutable audit record of one StockLevel mutation.
// Exactly one movement exists per affected product per successful mutation;
// the running sum of signed movement quantities for a (tenant, branch,
// product) scope reconciles to its current StockLevel quantity.
type StockMovement struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	BranchID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_movements_scope"`
	ProductID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_movements_scope"`
	Direction   MovementDirection `gorm:"size:3;not null"`
	Quantity    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Reason      MovementReason    `gorm:"size:20;not null"`
	SourceType  SourceDocType     `gorm:"size:20;not null"`
	SourceID    *uuid.UUID        `gorm:"type:uuid;index"`
	Description string            `gorm:"size:500"`
	CreatedAt   time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates an audit record for one mutation
func NewStockMovement(
	tenantID, branchID, productID uuid.UUID,
	direction MovementDirection,
	quantity decimal.Decimal,
	reason MovementReason,
	sourceType SourceDocType,
	sourceID *uuid.UUID,
	description string,
) (*StockMovement, error) {
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Movement direction must be IN or OUT")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	return &StockMovement{
		ID:          uuid.New(),
		TenantID:    tenantID,
		BranchID:    branchID,
		ProductID:   productID,
		Direction:   direction,
		Quantity:    quantity,
		Reason:      reason,
		SourceType:  sourceType,
		SourceID:    sourceID,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// SignedQuantity returns the quantity with direction applied (IN positive,
// OUT negative); summing it per scope reproduces the stock level.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
