package persistence

import (
	"context"
	"fmt"
	"time"

	appsales "github.com/retailcore/backend/internal/application/sales"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormSalesTransactionScope implements the sales TransactionScope using GORM
// transactions. Each transaction bounds its row-lock waits with a local
// lock_timeout; an expired wait surfaces as shared.ErrLockTimeout, which
// callers may retry.
type GormSalesTransactionScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormSalesTransactionScope creates a new GormSalesTransactionScope
func NewGormSalesTransactionScope(db *gorm.DB, lockTimeout time.Duration) *GormSalesTransactionScope {
	return &GormSalesTransactionScope{db: db, lockTimeout: lockTimeout}
}

// Execute runs the given function within a database transaction. If the
// function returns an error, the transaction is rolled back.
func (s *GormSalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyLockTimeout(tx, s.lockTimeout); err != nil {
			return err
		}
		return fn(&gormSalesRepositories{tx: tx})
	})
	return translatePgError(err)
}

// applyLockTimeout bounds row-lock waits for the current transaction.
// SET LOCAL reverts automatically at commit or rollback. The duration is
// interpolated rather than bound because SET takes no parameters; it is
// always produced from a parsed config value, never user input.
func applyLockTimeout(tx *gorm.DB, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())).Error
}

// gormSalesRepositories provides the checkout repositories bound to one
// transaction
type gormSalesRepositories struct {
	tx *gorm.DB
}

func (r *gormSalesRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormSalesRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormSalesRepositories) StockLevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

func (r *gormSalesRepositories) StockMovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormSalesRepositories) SequenceRepo() numbering.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

var _ appsales.TransactionScope = (*GormSalesTransactionScope)(nil)
var _ appsales.TransactionalRepositories = (*gormSalesRepositories)(nil)
