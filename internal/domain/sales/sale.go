package sales

import (
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the lifecycle status of a sale
type SaleStatus string

const (
	SaleStatusPosted   SaleStatus = "POSTED"
	SaleStatusHold     SaleStatus = "HOLD"
	SaleStatusVoid     SaleStatus = "VOID"
	SaleStatusRefunded SaleStatus = "REFUNDED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPosted, SaleStatusHold, SaleStatusVoid, SaleStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// SaleLine is a line item owned exclusively by one Sale. Lines are never
// mutated after the sale is posted; LineTotal always equals
// Quantity x UnitPrice at the minor unit.
type SaleLine struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	SaleID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID         `gorm:"type:uuid;not null"`
	Name      string            `gorm:"size:200;not null"`
	Quantity  decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	UnitPrice valueobject.Money `gorm:"not null"`
	LineTotal valueobject.Money `gorm:"not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

// Sale is the committed result of a cart checkout: a header with its line
// items and the four totals. Sales are append-only once posted; the only
// in-scope flow is creation, together with the stock decrements, inside one
// transaction.
type Sale struct {
	shared.TenantAggregateRoot
	BranchID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	InvoiceNumber string            `gorm:"size:40;not null;uniqueIndex:idx_sales_tenant_invoice,priority:2"`
	CustomerID    *uuid.UUID        `gorm:"type:uuid"`
	CustomerName  string            `gorm:"size:200"`
	Subtotal      valueobject.Money `gorm:"not null"`
	Discount      valueobject.Money `gorm:"not null"`
	Tax           valueobject.Money `gorm:"not null"`
	Total         valueobject.Money `gorm:"not null"`
	Status        SaleStatus        `gorm:"size:20;not null"`
	Notes         string            `gorm:"size:500"`
	SaleDate      time.Time         `gorm:"not null"`

	Lines []SaleLine `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// CartLine is one entry of a cart submitted for checkout
type CartLine struct {
	ProductID uuid.UUID
	Name      string
	Quantity  decimal.Decimal
	UnitPrice valueobject.Money
}

// Cart is a checkout request before any persistence happens. Discount and
// tax inputs follow the documented precedence: a positive DiscountPercent
// overrides DiscountAmount.
type Cart struct {
	Lines           []CartLine
	CustomerID      *uuid.UUID
	CustomerName    string
	DiscountAmount  valueobject.Money
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	Notes           string
	SaleDate        *time.Time
}

// NewSale validates a cart, computes its totals and builds the Sale
// aggregate. Nothing is persisted here; the application layer commits the
// result together with the stock decrements.
//
// Total arithmetic, all at the minor currency unit:
//
//	subtotal = sum(quantity x unit price) per line
//	discount = subtotal x pct/100 when pct > 0, else the explicit amount
//	          clamped to [0, subtotal]
//	tax      = max(0, subtotal - discount) x taxPct/100
//	total    = (subtotal - discount) + tax
func NewSale(tenantID, branchID uuid.UUID, invoiceNumber string, cart Cart) (*Sale, error) {
	if len(cart.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart must contain at least one item")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		InvoiceNumber:       invoiceNumber,
		CustomerID:          cart.CustomerID,
		CustomerName:        cart.CustomerName,
		Status:              SaleStatusPosted,
		Notes:               cart.Notes,
		SaleDate:            time.Now(),
		Lines:               make([]SaleLine, 0, len(cart.Lines)),
	}
	if cart.SaleDate != nil {
		sale.SaleDate = *cart.SaleDate
	}

	subtotal := valueobject.Zero
	for _, line := range cart.Lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainErrorf("INVALID_QUANTITY", "Quantity for %s must be positive", line.Name)
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainErrorf("INVALID_PRICE", "Unit price for %s cannot be negative", line.Name)
		}
		lineTotal := line.UnitPrice.MulQuantity(line.Quantity)
		sale.Lines = append(sale.Lines, SaleLine{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: lineTotal,
			CreatedAt: sale.CreatedAt,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	if !subtotal.IsPositive() {
		return nil, shared.NewDomainError("ZERO_SUBTOTAL", "Cart subtotal must be greater than zero")
	}

	discount := cart.DiscountAmount.ClampNonNegative()
	if cart.DiscountPercent.GreaterThan(decimal.Zero) {
		discount = subtotal.Percent(cart.DiscountPercent)
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	taxBase := subtotal.Sub(discount).ClampNonNegative()
	tax := valueobject.Zero
	if cart.TaxPercent.GreaterThan(decimal.Zero) {
		tax = taxBase.Percent(cart.TaxPercent)
	}

	sale.Subtotal = subtotal
	sale.Discount = discount
	sale.Tax = tax
	sale.Total = taxBase.Add(tax)

	sale.AddDomainEvent(NewSalePostedEvent(sale))

	return sale, nil
}

// QuantityByProduct aggregates line quantities per product. Two cart lines
// for the same product are summed before any stock check runs.
func (s *Sale) QuantityByProduct() map[uuid.UUID]decimal.Decimal {
	totals := make(map[uuid.UUID]decimal.Decimal, len(s.Lines))
	for _, line := range s.Lines {
		totals[line.ProductID] = totals[line.ProductID].Add(line.Quantity)
	}
	return totals
}

// LineTotalSum re-adds the stored line totals; it must reproduce Subtotal
// exactly, which reconciliation relies on.
func (s *Sale) LineTotalSum() valueobject.Money {
	sum := valueobject.Zero
	for _, line := range s.Lines {
		sum = sum.Add(line.LineTotal)
	}
	return sum
}

// CheckInvariants verifies the header arithmetic against the stored lines.
// It is run before the aggregate is handed to persistence.
func (s *Sale) CheckInvariants() error {
	if !s.LineTotalSum().Equal(s.Subtotal) {
		return shared.NewDomainError("SUBTOTAL_MISMATCH", "Sum of line totals does not match subtotal")
	}
	expected := s.Subtotal.Sub(s.Discount).Add(s.Tax)
	if !s.Total.Equal(expected) {
		return shared.NewDomainError("TOTAL_MISMATCH", "Total does not equal subtotal - discount + tax")
	}
	return nil
}
