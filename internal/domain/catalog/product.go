package catalog

import (
	"strings"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Product is the slice of the catalog the commerce engine needs: the
// stock-tracked flag gates inventory checks and mutations, the name feeds
// error messages, and the selling price seeds cart lines when the caller
// omits one. Catalog maintenance screens live outside this engine.
type Product struct {
	shared.TenantAggregateRoot
	SKU          string            `gorm:"size:64;not null;uniqueIndex:idx_products_tenant_sku,priority:2"`
	Name         string            `gorm:"size:200;not null"`
	StockTracked bool              `gorm:"not null;default:true"`
	SellingPrice valueobject.Money `gorm:"not null;default:0"`
	Active       bool              `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, sku, name string, stockTracked bool, sellingPrice valueobject.Money) (*Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		Name:                name,
		StockTracked:        stockTracked,
		SellingPrice:        sellingPrice,
		Active:              true,
	}, nil
}
