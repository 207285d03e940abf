package inventory

import (
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeStockLevel    = "StockLevel"
	AggregateTypeStockTransfer = "StockTransfer"
)

// Event type constants
const (
	EventTypeStockAdjusted    = "StockAdjusted"
	EventTypeStockTransferred = "StockTransferred"
)

// StockAdjustedEvent is raised when a manual adjustment is applied
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	BranchID  uuid.UUID       `json:"branch_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Delta     decimal.Decimal `json:"delta"`
	Reason    string          `json:"reason"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(level *StockLevel, delta decimal.Decimal, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStockLevel, level.ID, level.TenantID),
		BranchID:        level.BranchID,
		ProductID:       level.ProductID,
		Delta:           delta,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *StockAdjustedEvent) EventType() string {
	return EventTypeStockAdjusted
}

// StockTransferredEvent is raised when a branch-to-branch transfer commits
type StockTransferredEvent struct {
	shared.BaseDomainEvent
	TransferID   uuid.UUID `json:"transfer_id"`
	Reference    string    `json:"reference"`
	FromBranchID uuid.UUID `json:"from_branch_id"`
	ToBranchID   uuid.UUID `json:"to_branch_id"`
	LineCount    int       `json:"line_count"`
}

// NewStockTransferredEvent creates a new StockTransferredEvent
func NewStockTransferredEvent(transfer *StockTransfer) *StockTransferredEvent {
	return &StockTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTransferred, AggregateTypeStockTransfer, transfer.ID, transfer.TenantID),
		TransferID:      transfer.ID,
		Reference:       transfer.Reference,
		FromBranchID:    transfer.FromBranchID,
		ToBranchID:      transfer.ToBranchID,
		LineCount:       len(transfer.Lines),
	}
}

// EventType returns the event type name
func (e *StockTransferredEvent) EventType() string {
	return EventTypeStockTransferred
}
