package ledger

import (
	"context"

	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/numbering"
)

// TransactionScope runs ledger writes inside one database transaction. An
// expense or payment commits together with its journal and the back-link
// stamped on the source document.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories the poster touches,
// all bound to the same underlying transaction.
type TransactionalRepositories interface {
	JournalRepo() ledger.JournalRepository
	AccountRepo() ledger.AccountRepository
	ExpenseRepo() ledger.ExpenseRecordRepository
	PaymentRepo() ledger.PaymentRecordRepository
	SequenceRepo() numbering.SequenceRepository
}
