package ledger

import (
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SourceDocType identifies the document a journal was posted for
type SourceDocType string

const (
	SourceDocExpense SourceDocType = "EXPENSE"
	SourceDocPayment SourceDocType = "PAYMENT"
	SourceDocSale    SourceDocType = "SALE"
)

// JournalEntry is one side of a posting. Exactly one of Debit and Credit is
// nonzero; the enclosing Journal balances entry debits against credits.
type JournalEntry struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	JournalID uuid.UUID         `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Debit     valueobject.Money `gorm:"not null;default:0"`
	Credit    valueobject.Money `gorm:"not null;default:0"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// IsSingleSided reports whether exactly one of debit/credit is nonzero
func (e *JournalEntry) IsSingleSided() bool {
	return e.Debit.IsPositive() != e.Credit.IsPositive()
}

// Journal is a balanced accounting record. This model only produces the
// two-entry form: one debit and one credit of equal amount. Journals are
// immutable once created; the only later write related to a journal is the
// one-way back-link stamped on its source document.
type Journal struct {
	shared.TenantAggregateRoot
	Reference   string        `gorm:"size:40;not null;uniqueIndex:idx_journals_tenant_ref,priority:2"`
	JournalDate time.Time     `gorm:"not null"`
	Memo        string        `gorm:"size:500"`
	SourceType  SourceDocType `gorm:"size:20"`
	SourceID    *uuid.UUID    `gorm:"type:uuid;index"`

	Entries []JournalEntry `gorm:"foreignKey:JournalID;references:ID"`
}

// TableName returns the table name for GORM
func (Journal) TableName() string {
	return "journals"
}

// NewBalancedJournal creates a journal with exactly two entries: amount
// debited on debitAccountID and credited on creditAccountID. Balance holds
// by construction; CheckBalance still guards the persistence path.
func NewBalancedJournal(
	tenantID uuid.UUID,
	reference string,
	journalDate time.Time,
	memo string,
	amount valueobject.Money,
	debitAccountID, creditAccountID uuid.UUID,
	sourceType SourceDocType,
	sourceID *uuid.UUID,
) (*Journal, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Journal reference cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Journal amount must be positive")
	}
	if debitAccountID == uuid.Nil || creditAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Debit and credit accounts are required")
	}
	if debitAccountID == creditAccountID {
		return nil, shared.NewDomainError("SAME_ACCOUNT", "Debit and credit accounts must differ")
	}

	journal := &Journal{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		JournalDate:         journalDate,
		Memo:                memo,
		SourceType:          sourceType,
		SourceID:            sourceID,
	}
	journal.Entries = []JournalEntry{
		{
			ID:        uuid.New(),
			JournalID: journal.ID,
			AccountID: debitAccountID,
			Debit:     amount,
			Credit:    valueobject.Zero,
			CreatedAt: journal.CreatedAt,
		},
		{
			ID:        uuid.New(),
			JournalID: journal.ID,
			AccountID: creditAccountID,
			Debit:     valueobject.Zero,
			Credit:    amount,
			CreatedAt: journal.CreatedAt,
		},
	}

	journal.AddDomainEvent(NewJournalPostedEvent(journal, amount))

	return journal, nil
}

// TotalDebit sums the debit side
func (j *Journal) TotalDebit() valueobject.Money {
	sum := valueobject.Zero
	for _, e := range j.Entries {
		sum = sum.Add(e.Debit)
	}
	return sum
}

// TotalCredit sums the credit side
func (j *Journal) TotalCredit() valueobject.Money {
	sum := valueobject.Zero
	for _, e := range j.Entries {
		sum = sum.Add(e.Credit)
	}
	return sum
}

// CheckBalance verifies the double-entry invariants before persistence:
// every entry single-sided, total debits equal to total credits.
func (j *Journal) CheckBalance() error {
	for i := range j.Entries {
		if !j.Entries[i].IsSingleSided() {
			return shared.NewDomainError("INVALID_ENTRY", "Each journal entry must have exactly one nonzero side")
		}
	}
	if !j.TotalDebit().Equal(j.TotalCredit()) {
		return shared.ErrUnbalancedJournal
	}
	return nil
}
