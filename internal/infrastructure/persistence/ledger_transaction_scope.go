package persistence

import (
	"context"

	appledger "github.com/retailcore/backend/internal/application/ledger"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/numbering"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the ledger TransactionScope using
// GORM transactions. Ledger writes are insert-heavy and take no row locks
// beyond the sequence upsert, so no lock_timeout is configured here.
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. If the
// function returns an error, the transaction is rolled back.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
	return translatePgError(err)
}

// gormLedgerRepositories provides the posting repositories bound to one
// transaction
type gormLedgerRepositories struct {
	tx *gorm.DB
}

func (r *gormLedgerRepositories) JournalRepo() ledger.JournalRepository {
	return NewGormJournalRepository(r.tx)
}

func (r *gormLedgerRepositories) AccountRepo() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormLedgerRepositories) ExpenseRepo() ledger.ExpenseRecordRepository {
	return NewGormExpenseRecordRepository(r.tx)
}

func (r *gormLedgerRepositories) PaymentRepo() ledger.PaymentRecordRepository {
	return NewGormPaymentRecordRepository(r.tx)
}

func (r *gormLedgerRepositories) SequenceRepo() numbering.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)
var _ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
