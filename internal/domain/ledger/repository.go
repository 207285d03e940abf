package ledger

import (
	"context"

	"github.com/google/uuid"
)

// JournalRepository persists journals with their entries
type JournalRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Journal, error)
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceDocType, sourceID uuid.UUID) (*Journal, error)
	Save(ctx context.Context, journal *Journal) error
}

// AccountRepository resolves ledger accounts. Resolution failing is not an
// error condition for the poster; it triggers the documented skip.
type AccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

// ExpenseRecordRepository persists expense source documents
type ExpenseRecordRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseRecord, error)
	Save(ctx context.Context, record *ExpenseRecord) error
}

// PaymentRecordRepository persists payment source documents
type PaymentRecordRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentRecord, error)
	Save(ctx context.Context, record *PaymentRecord) error
}
