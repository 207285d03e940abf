package inventory

import (
	"time"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustStockRequest applies a signed quantity delta to one product's stock
// at a branch. Positive deltas receive stock, negative deltas write it off.
type AdjustStockRequest struct {
	ProductID uuid.UUID       `json:"product_id"`
	Delta     decimal.Decimal `json:"delta"`
	Reason    string          `json:"reason"`
}

// TransferLineInput is one product/quantity pair of a transfer request
type TransferLineInput struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// TransferStockRequest moves quantity between two branches of the tenant
type TransferStockRequest struct {
	FromBranchID uuid.UUID           `json:"from_branch_id"`
	ToBranchID   uuid.UUID           `json:"to_branch_id"`
	Notes        string              `json:"notes"`
	Lines        []TransferLineInput `json:"lines"`
}

// TransferResponse returns the persisted transfer with its drawn reference
type TransferResponse struct {
	ID           uuid.UUID              `json:"id"`
	Reference    string                 `json:"reference"`
	FromBranchID uuid.UUID              `json:"from_branch_id"`
	ToBranchID   uuid.UUID              `json:"to_branch_id"`
	TransferDate time.Time              `json:"transfer_date"`
	Notes        string                 `json:"notes,omitempty"`
	Lines        []TransferLineResponse `json:"lines"`
}

// TransferLineResponse is one line of a persisted transfer
type TransferLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ToTransferResponse maps a transfer aggregate to its response shape
func ToTransferResponse(transfer *inventory.StockTransfer) TransferResponse {
	lines := make([]TransferLineResponse, 0, len(transfer.Lines))
	for _, line := range transfer.Lines {
		lines = append(lines, TransferLineResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return TransferResponse{
		ID:           transfer.ID,
		Reference:    transfer.Reference,
		FromBranchID: transfer.FromBranchID,
		ToBranchID:   transfer.ToBranchID,
		TransferDate: transfer.TransferDate,
		Notes:        transfer.Notes,
		Lines:        lines,
	}
}

// StockLevelResponse is one product's on-hand quantity at a branch
type StockLevelResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	BranchID  uuid.UUID       `json:"branch_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToStockLevelResponse maps a stock level row to its response shape
func ToStockLevelResponse(level *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ProductID: level.ProductID,
		BranchID:  level.BranchID,
		Quantity:  level.Quantity,
		UpdatedAt: level.UpdatedAt,
	}
}

// MovementResponse is one row of the append-only movement history
type MovementResponse struct {
	ID        uuid.UUID       `json:"id"`
	BranchID  uuid.UUID       `json:"branch_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Direction string          `json:"direction"`
	Reason    string          `json:"reason"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToMovementResponse maps a movement row to its response shape
func ToMovementResponse(movement *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:        movement.ID,
		BranchID:  movement.BranchID,
		ProductID: movement.ProductID,
		Direction: string(movement.Direction),
		Reason:    string(movement.Reason),
		Quantity:  movement.Quantity,
		CreatedAt: movement.CreatedAt,
	}
}
