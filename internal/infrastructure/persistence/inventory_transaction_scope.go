package persistence

import (
	"context"
	"time"

	appinv "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions, with the same bounded lock_timeout as the sales
// scope since transfers lock rows at two branches.
type GormInventoryTransactionScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB, lockTimeout time.Duration) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db, lockTimeout: lockTimeout}
}

// Execute runs the given function within a database transaction. If the
// function returns an error, the transaction is rolled back.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyLockTimeout(tx, s.lockTimeout); err != nil {
			return err
		}
		return fn(&gormInventoryRepositories{tx: tx})
	})
	return translatePgError(err)
}

// gormInventoryRepositories provides the stock repositories bound to one
// transaction
type gormInventoryRepositories struct {
	tx *gorm.DB
}

func (r *gormInventoryRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormInventoryRepositories) StockLevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

func (r *gormInventoryRepositories) StockMovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormInventoryRepositories) StockTransferRepo() inventory.StockTransferRepository {
	return NewGormStockTransferRepository(r.tx)
}

func (r *gormInventoryRepositories) SequenceRepo() numbering.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormInventoryTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormInventoryRepositories)(nil)
