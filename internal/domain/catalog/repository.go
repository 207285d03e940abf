package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the read-side the commerce engine needs from the
// catalog. Creation and editing of products happen elsewhere.
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	// FindByIDs loads the given products in one round trip. Missing IDs are
	// simply absent from the result map.
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
	Save(ctx context.Context, product *Product) error
}
