package persistence

import (
	"context"
	"errors"

	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormJournalRepository implements ledger.JournalRepository using GORM
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a new GormJournalRepository
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// FindByIDForTenant finds a journal with its entries by ID within a tenant
func (r *GormJournalRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Journal, error) {
	var journal ledger.Journal
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&journal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &journal, nil
}

// FindBySource finds the journal posted for a source document
func (r *GormJournalRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType ledger.SourceDocType, sourceID uuid.UUID) (*ledger.Journal, error) {
	var journal ledger.Journal
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("tenant_id = ? AND source_type = ? AND source_id = ?", tenantID, sourceType, sourceID).
		First(&journal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &journal, nil
}

// Save persists the journal header with its entries
func (r *GormJournalRepository) Save(ctx context.Context, journal *ledger.Journal) error {
	return translatePgError(r.db.WithContext(ctx).Save(journal).Error)
}

var _ ledger.JournalRepository = (*GormJournalRepository)(nil)

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	var account ledger.Account
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByCode finds an active account by its code within a tenant
func (r *GormAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ledger.Account, error) {
	var account ledger.Account
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ? AND active = ?", tenantID, code, true).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	return translatePgError(r.db.WithContext(ctx).Save(account).Error)
}

var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
