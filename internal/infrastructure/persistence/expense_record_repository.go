package persistence

import (
	"context"
	"errors"

	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRecordRepository implements ledger.ExpenseRecordRepository
// using GORM
type GormExpenseRecordRepository struct {
	db *gorm.DB
}

// NewGormExpenseRecordRepository creates a new GormExpenseRecordRepository
func NewGormExpenseRecordRepository(db *gorm.DB) *GormExpenseRecordRepository {
	return &GormExpenseRecordRepository{db: db}
}

// FindByIDForTenant finds an expense record by ID within a tenant
func (r *GormExpenseRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.ExpenseRecord, error) {
	var record ledger.ExpenseRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save creates or updates an expense record
func (r *GormExpenseRecordRepository) Save(ctx context.Context, record *ledger.ExpenseRecord) error {
	return translatePgError(r.db.WithContext(ctx).Save(record).Error)
}

var _ ledger.ExpenseRecordRepository = (*GormExpenseRecordRepository)(nil)

// GormPaymentRecordRepository implements ledger.PaymentRecordRepository
// using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// FindByIDForTenant finds a payment record by ID within a tenant
func (r *GormPaymentRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.PaymentRecord, error) {
	var record ledger.PaymentRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save creates or updates a payment record
func (r *GormPaymentRecordRepository) Save(ctx context.Context, record *ledger.PaymentRecord) error {
	return translatePgError(r.db.WithContext(ctx).Save(record).Error)
}

var _ ledger.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
