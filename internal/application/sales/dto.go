package sales

import (
	"time"

	"github.com/retailcore/backend/internal/domain/sales"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutItemInput is one cart line as submitted by the caller. Name and
// UnitPrice are optional; missing values come from the catalog.
type CheckoutItemInput struct {
	ProductID uuid.UUID
	Name      string
	Quantity  decimal.Decimal
	UnitPrice *valueobject.Money
}

// CheckoutRequest is a cart submitted for checkout
type CheckoutRequest struct {
	Items           []CheckoutItemInput
	CustomerID      *uuid.UUID
	CustomerName    string
	DiscountAmount  valueobject.Money
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	Notes           string
	SaleDate        *time.Time
	// InvoiceNumber lets the caller pin a number; empty draws the next
	// code from the sale sequence.
	InvoiceNumber string
}

// CheckoutResponse reports the committed sale
type CheckoutResponse struct {
	ID            uuid.UUID         `json:"id"`
	InvoiceNumber string            `json:"invoice_no"`
	BranchID      uuid.UUID         `json:"branch_id"`
	Subtotal      valueobject.Money `json:"subtotal"`
	Discount      valueobject.Money `json:"discount"`
	Tax           valueobject.Money `json:"tax"`
	Total         valueobject.Money `json:"total"`
}

// SaleLineResponse is a line in sale detail responses
type SaleLineResponse struct {
	ProductID uuid.UUID         `json:"product_id"`
	Name      string            `json:"name"`
	Quantity  decimal.Decimal   `json:"quantity"`
	UnitPrice valueobject.Money `json:"unit_price"`
	LineTotal valueobject.Money `json:"line_total"`
}

// SaleResponse is the full sale detail view
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	BranchID      uuid.UUID          `json:"branch_id"`
	InvoiceNumber string             `json:"invoice_no"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	Subtotal      valueobject.Money  `json:"subtotal"`
	Discount      valueobject.Money  `json:"discount"`
	Tax           valueobject.Money  `json:"tax"`
	Total         valueobject.Money  `json:"total"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	SaleDate      time.Time          `json:"sale_date"`
	Lines         []SaleLineResponse `json:"lines"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ToSaleResponse maps a Sale aggregate to its response form
func ToSaleResponse(sale *sales.Sale) SaleResponse {
	lines := make([]SaleLineResponse, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		lines = append(lines, SaleLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}
	return SaleResponse{
		ID:            sale.ID,
		TenantID:      sale.TenantID,
		BranchID:      sale.BranchID,
		InvoiceNumber: sale.InvoiceNumber,
		CustomerID:    sale.CustomerID,
		CustomerName:  sale.CustomerName,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Tax:           sale.Tax,
		Total:         sale.Total,
		Status:        sale.Status.String(),
		Notes:         sale.Notes,
		SaleDate:      sale.SaleDate,
		Lines:         lines,
		CreatedAt:     sale.CreatedAt,
	}
}

// SaleListFilter narrows sale listings
type SaleListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}
