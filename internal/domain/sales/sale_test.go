package sales

import (
	"testing"
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartLine(name string, qty int64, priceUnits int64) CartLine {
	return CartLine{
		ProductID: uuid.New(),
		Name:      name,
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: valueobject.NewMoney(priceUnits),
	}
}

func TestSaleStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  SaleStatus
		isValid bool
	}{
		{SaleStatusPosted, true},
		{SaleStatusHold, true},
		{SaleStatusVoid, true},
		{SaleStatusRefunded, true},
		{SaleStatus("DRAFT"), false},
		{SaleStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestNewSale_TotalsWithPercentDiscountAndTax(t *testing.T) {
	// cart [{qty:2, price:100}, {qty:1, price:50}], 10% discount, 5% tax
	cart := Cart{
		Lines: []CartLine{
			cartLine("Widget", 2, 10000),
			cartLine("Gadget", 1, 5000),
		},
		DiscountPercent: decimal.NewFromInt(10),
		TaxPercent:      decimal.NewFromInt(5),
	}

	sale, err := NewSale(uuid.New(), uuid.New(), "INV-2026-00001", cart)
	require.NoError(t, err)

	assert.Equal(t, int64(25000), sale.Subtotal.Units(), "subtotal 250.00")
	assert.Equal(t, int64(2500), sale.Discount.Units(), "discount 25.00")
	assert.Equal(t, int64(1125), sale.Tax.Units(), "tax 11.25 on base 225.00")
	assert.Equal(t, int64(23625), sale.Total.Units(), "total 236.25")
	assert.NoError(t, sale.CheckInvariants())
	assert.Equal(t, SaleStatusPosted, sale.Status)
}

func TestNewSale_PercentDiscountOverridesAmount(t *testing.T) {
	cart := Cart{
		Lines:           []CartLine{cartLine("Widget", 1, 10000)},
		DiscountAmount:  valueobject.NewMoney(9000),
		DiscountPercent: decimal.NewFromInt(10),
	}

	sale, err := NewSale(uuid.New(), uuid.New(), "INV-2026-00002", cart)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), sale.Discount.Units(), "10%% of 100.00, not the 90.00 amount")
}

func TestNewSale_ExplicitDiscountAmount(t *testing.T) {
	t.Run("used when no percentage", func(t *testing.T) {
		cart := Cart{
			Lines:          []CartLine{cartLine("Widget", 1, 10000)},
			DiscountAmount: valueobject.NewMoney(1500),
		}
		sale, err := NewSale(uuid.New(), uuid.New(), "INV-2026-00003", cart)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), sale.Discount.Units())
		assert.Equal(t, int64(8500), sale.Total.Units())
	})

	t.Run("negative amount clamps to zero", func(t *testing.T) {
		cart := Cart{
			Lines:          []CartLine{cartLine("Widget", 1, 10000)},
			DiscountAmount: valueobject.NewMoney(-500),
		}
		sale, err := NewSale(uuid.New(), uuid.New(), "INV-2026-00004", cart)
		require.NoError(t, err)
		assert.True(t, sale.Discount.IsZero())
	})

	t.Run("amount above subtotal clamps to subtotal", func(t *testing.T) {
		cart := Cart{
			Lines:          []CartLine{cartLine("Widget", 1, 10000)},
			DiscountAmount: valueobject.NewMoney(20000),
			TaxPercent:     decimal.NewFromInt(5),
		}
		sale, err := NewSale(uuid.New(), uuid.New(), "INV-2026-00005", cart)
		require.NoError(t, err)
		assert.Equal(t, sale.Subtotal, sale.Discount)
		assert.True(t, sale.Tax.IsZero(), "tax base is zero")
		assert.True(t, sale.Total.IsZero())
	})
}

func TestNewSale_Validation(t *testing.T) {
	tenantID := uuid.New()
	branchID := uuid.New()

	t.Run("empty cart", func(t *testing.T) {
		_, err := NewSale(tenantID, branchID, "INV-2026-00006", Cart{})
		require.Error(t, err)
		assert.Equal(t, "EMPTY_CART", err.(*shared.DomainError).Code)
	})

	t.Run("missing invoice number", func(t *testing.T) {
		cart := Cart{Lines: []CartLine{cartLine("Widget", 1, 100)}}
		_, err := NewSale(tenantID, branchID, "", cart)
		require.Error(t, err)
		assert.Equal(t, "INVALID_INVOICE_NUMBER", err.(*shared.DomainError).Code)
	})

	t.Run("zero quantity", func(t *testing.T) {
		cart := Cart{Lines: []CartLine{cartLine("Widget", 0, 100)}}
		_, err := NewSale(tenantID, branchID, "INV-2026-00007", cart)
		require.Error(t, err)
		assert.Equal(t, "INVALID_QUANTITY", err.(*shared.DomainError).Code)
	})

	t.Run("negative price", func(t *testing.T) {
		cart := Cart{Lines: []CartLine{cartLine("Widget", 1, -100)}}
		_, err := NewSale(tenantID, branchID, "INV-2026-00008", cart)
		require.Error(t, err)
		assert.Equal(t, "INVALID_PRICE", err.(*shared.DomainError).Code)
	})

	t.Run("zero subtotal", func(t *testing.T) {
		cart := Cart{Lines: []CartLine{cartLine("Freebie", 3, 0)}}
		_, err := NewSale(tenantID, branchID, "INV-2026-00009", cart)
		require.Error(t, err)
		assert.Equal(t, "ZERO_SUBTOTAL", err.(*shared.DomainError).Code)
	})
}

func TestNewSale_FractionalQuantityRounding(t *testing.T) {
	// 3 x 0.333 @ 9.99: each line rounds independently at the minor unit
	cart := Cart{
		Lines: []CartLine{
			{ProductID: uuid.New(), Name: "Bulk", Quantity: decimal.NewFromFloat(0.333), UnitPrice: valueobject.NewMoney(999)},
			{ProductID: uuid.New(), Name: "Bulk", Quantity: decimal.NewFromFloat(0.333), UnitPrice: valueobject.NewMoney(999)},
			{ProductID: uuid.New(), Name: "Bulk", Quantity: decimal.NewFromFloat(0.333), UnitPrice: valueobject.NewMoney(999)},
		},
	}

	sale, err := NewSale(uuid.New(), uuid.New(), "INV-2026-00010", cart)
	require.NoError(t, err)
	// 0.333 * 9.99 = 3.32667 -> 3.33 per line
	assert.Equal(t, int64(333), sale.Lines[0].LineTotal.Units())
	assert.Equal(t, sale.LineTotalSum(), sale.Subtotal, "subtotal is the sum of rounded line totals")
	assert.NoError(t, sale.CheckInvariants())
}

func TestSale_QuantityByProduct(t *testing.T) {
	productID := uuid.New()
	cart := Cart{
		Lines: []CartLine{
			{ProductID: productID, Name: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: valueobject.NewMoney(100)},
			{ProductID: productID, Name: "Widget", Quantity: decimal.NewFromInt(3), UnitPrice: valueobject.NewMoney(100)},
			cartLine("Gadget", 1, 100),
		},
	}

	sale, err := NewSale(uuid.New(), uuid.New(), "INV-2026-00011", cart)
	require.NoError(t, err)

	totals := sale.QuantityByProduct()
	assert.Len(t, totals, 2)
	assert.True(t, totals[productID].Equal(decimal.NewFromInt(5)), "duplicate lines are summed")
}

func TestNewSale_UsesSuppliedSaleDate(t *testing.T) {
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	cart := Cart{
		Lines:    []CartLine{cartLine("Widget", 1, 100)},
		SaleDate: &date,
	}

	sale, err := NewSale(uuid.New(), uuid.New(), "INV-2026-00012", cart)
	require.NoError(t, err)
	assert.Equal(t, date, sale.SaleDate)
}

func TestNewSale_EmitsSalePostedEvent(t *testing.T) {
	cart := Cart{Lines: []CartLine{cartLine("Widget", 2, 10000)}}
	sale, err := NewSale(uuid.New(), uuid.New(), "INV-2026-00013", cart)
	require.NoError(t, err)

	events := sale.GetDomainEvents()
	require.Len(t, events, 1)
	posted, ok := events[0].(*SalePostedEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeSalePosted, posted.EventType())
	assert.Equal(t, sale.ID, posted.SaleID)
	assert.Equal(t, "INV-2026-00013", posted.InvoiceNumber)
}
