package persistence

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLevelRepository implements inventory.StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db           *gorm.DB
	capabilities shared.SchemaCapabilities
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// NewGormStockLevelRepositoryWithCapabilities creates a repository that
// consults the schema capabilities before filtering on branch_id. Schemas
// migrated before branches existed keep all stock on one implicit branch.
func NewGormStockLevelRepositoryWithCapabilities(db *gorm.DB, capabilities shared.SchemaCapabilities) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db, capabilities: capabilities}
}

// branchColumnPresent reports whether stock_levels carries branch_id.
// Repositories built without a resolver assume the current schema.
func (r *GormStockLevelRepository) branchColumnPresent() bool {
	if r.capabilities == nil {
		return true
	}
	return r.capabilities.ColumnExists("stock_levels", "branch_id")
}

// LockForUpdate locks the stock rows for the given keys with SELECT ... FOR
// UPDATE. Rows are locked in StockKey order regardless of the caller's key
// order so overlapping operations acquire locks in the same sequence. Keys
// without a row are simply absent from the result map.
func (r *GormStockLevelRepository) LockForUpdate(ctx context.Context, tenantID uuid.UUID, keys []inventory.StockKey) (map[inventory.StockKey]*inventory.StockLevel, error) {
	result := make(map[inventory.StockKey]*inventory.StockLevel, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	ordered := make([]inventory.StockKey, len(keys))
	copy(ordered, keys)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Less(ordered[j]) })

	conditions := make([]string, 0, len(ordered))
	args := make([]interface{}, 0, len(ordered)*2+1)
	args = append(args, tenantID)
	for _, key := range ordered {
		conditions = append(conditions, "(branch_id = ? AND product_id = ?)")
		args = append(args, key.BranchID, key.ProductID)
	}

	var levels []inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND ("+strings.Join(conditions, " OR ")+")", args...).
		Order("branch_id, product_id").
		Find(&levels).Error; err != nil {
		return nil, translatePgError(err)
	}

	for i := range levels {
		key := inventory.StockKey{BranchID: levels[i].BranchID, ProductID: levels[i].ProductID}
		result[key] = &levels[i]
	}
	return result, nil
}

// FindByKey finds a stock row by branch and product within a tenant
func (r *GormStockLevelRepository) FindByKey(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND product_id = ?", tenantID, branchID, productID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByBranch lists stock rows for a branch with pagination
func (r *GormStockLevelRepository) FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&inventory.StockLevel{}).
		Where("tenant_id = ?", tenantID)
	if r.branchColumnPresent() {
		query = query.Where("branch_id = ?", branchID)
	}

	if productID, ok := filter.Filters["product_id"]; ok {
		query = query.Where("product_id = ?", productID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var levels []inventory.StockLevel
	if err := applyPagination(query, filter).Find(&levels).Error; err != nil {
		return nil, 0, err
	}
	return levels, total, nil
}

// Save updates an existing, previously locked stock row
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return translatePgError(r.db.WithContext(ctx).Save(level).Error)
}

// Create inserts a brand-new stock row. The unique (tenant, branch, product)
// index turns a racing insert into shared.ErrAlreadyExists.
func (r *GormStockLevelRepository) Create(ctx context.Context, level *inventory.StockLevel) error {
	return translatePgError(r.db.WithContext(ctx).Create(level).Error)
}

var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)

// GormStockMovementRepository implements inventory.StockMovementRepository
// using GORM. The table is append-only.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append inserts a new movement record
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindBySource lists movements produced by a source document, oldest first
func (r *GormStockMovementRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceDocType, sourceID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_type = ? AND source_id = ?", tenantID, sourceType, sourceID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// SumForScope returns the signed movement sum for one stock scope. IN
// movements count positive and OUT movements negative, so the sum must equal
// the current StockLevel quantity.
func (r *GormStockMovementRepository) SumForScope(ctx context.Context, tenantID, branchID, productID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN quantity ELSE -quantity END), 0)", inventory.MovementIn).
		Where("tenant_id = ? AND branch_id = ? AND product_id = ?", tenantID, branchID, productID).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
