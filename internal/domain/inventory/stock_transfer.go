package inventory

import (
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockTransferLine is one product/quantity pair of a transfer
type StockTransferLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransferID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (StockTransferLine) TableName() string {
	return "stock_transfer_lines"
}

// StockTransfer moves quantity between two branches of the same tenant.
// A transfer either fully applies (every line debited at the source and
// credited at the destination) or not at all; the availability check runs
// against the source branch only.
type StockTransfer struct {
	shared.TenantAggregateRoot
	Reference    string    `gorm:"size:40;not null;uniqueIndex:idx_stock_transfers_tenant_ref,priority:2"`
	FromBranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	ToBranchID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TransferDate time.Time `gorm:"not null"`
	Notes        string    `gorm:"size:500"`

	Lines []StockTransferLine `gorm:"foreignKey:TransferID;references:ID"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewStockTransfer validates and builds a transfer aggregate. Quantities for
// duplicate products are kept as separate lines but aggregated for checks
// via QuantityByProduct.
func NewStockTransfer(tenantID uuid.UUID, reference string, fromBranchID, toBranchID uuid.UUID, lines []StockTransferLine) (*StockTransfer, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Transfer reference cannot be empty")
	}
	if fromBranchID == toBranchID {
		return nil, shared.NewDomainError("SAME_BRANCH", "Source and destination branch must differ")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_TRANSFER", "Transfer must contain at least one line")
	}

	transfer := &StockTransfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		FromBranchID:        fromBranchID,
		ToBranchID:          toBranchID,
		TransferDate:        time.Now(),
		Lines:               make([]StockTransferLine, 0, len(lines)),
	}

	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Transfer line product cannot be empty")
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer line quantity must be positive")
		}
		transfer.Lines = append(transfer.Lines, StockTransferLine{
			ID:         uuid.New(),
			TransferID: transfer.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			CreatedAt:  transfer.CreatedAt,
		})
	}

	transfer.AddDomainEvent(NewStockTransferredEvent(transfer))

	return transfer, nil
}

// QuantityByProduct aggregates line quantities per product before the
// source-branch availability check.
func (t *StockTransfer) QuantityByProduct() map[uuid.UUID]decimal.Decimal {
	totals := make(map[uuid.UUID]decimal.Decimal, len(t.Lines))
	for _, line := range t.Lines {
		totals[line.ProductID] = totals[line.ProductID].Add(line.Quantity)
	}
	return totals
}
