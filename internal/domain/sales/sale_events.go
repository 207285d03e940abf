package sales

import (
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSalePosted = "SalePosted"
)

// SalePostedEvent is raised when a sale is committed
type SalePostedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID `json:"sale_id"`
	BranchID      uuid.UUID `json:"branch_id"`
	InvoiceNumber string    `json:"invoice_number"`
	TotalUnits    int64     `json:"total_units"`
	LineCount     int       `json:"line_count"`
}

// NewSalePostedEvent creates a new SalePostedEvent
func NewSalePostedEvent(sale *Sale) *SalePostedEvent {
	return &SalePostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalePosted, AggregateTypeSale, sale.ID, sale.TenantID),
		SaleID:          sale.ID,
		BranchID:        sale.BranchID,
		InvoiceNumber:   sale.InvoiceNumber,
		TotalUnits:      sale.Total.Units(),
		LineCount:       len(sale.Lines),
	}
}

// EventType returns the event type name
func (e *SalePostedEvent) EventType() string {
	return EventTypeSalePosted
}
