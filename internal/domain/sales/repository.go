package sales

import (
	"context"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleRepository persists Sale aggregates. Lines are part of the aggregate
// and are saved with the header; there is no line-level access.
type SaleRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*Sale, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Sale, int64, error)
	ExistsByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error)
	Save(ctx context.Context, sale *Sale) error
}
