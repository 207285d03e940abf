package ledger

import (
	"strings"
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ExpenseRecord is a source document the poster writes a journal for. The
// record itself always commits; the JournalID/PostedAt back-link is only
// stamped when ledger posting was possible (best-effort policy).
type ExpenseRecord struct {
	shared.TenantAggregateRoot
	Reference   string            `gorm:"size:40;not null;uniqueIndex:idx_expense_records_tenant_ref,priority:2"`
	Category    string            `gorm:"size:100;not null"`
	Amount      valueobject.Money `gorm:"not null"`
	Description string            `gorm:"size:500"`
	IncurredAt  time.Time         `gorm:"not null"`
	JournalID   *uuid.UUID        `gorm:"type:uuid;index"`
	PostedAt    *time.Time
}

// TableName returns the table name for GORM
func (ExpenseRecord) TableName() string {
	return "expense_records"
}

// NewExpenseRecord creates an expense source document
func NewExpenseRecord(tenantID uuid.UUID, reference, category string, amount valueobject.Money, description string, incurredAt time.Time) (*ExpenseRecord, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Expense reference cannot be empty")
	}
	if strings.TrimSpace(category) == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	return &ExpenseRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		Category:            strings.TrimSpace(category),
		Amount:              amount,
		Description:         description,
		IncurredAt:          incurredAt,
	}, nil
}

// LinkJournal stamps the one-way back-link to the posted journal
func (r *ExpenseRecord) LinkJournal(journalID uuid.UUID) {
	now := time.Now()
	r.JournalID = &journalID
	r.PostedAt = &now
	r.Touch()
	r.IncrementVersion()
}

// IsPosted reports whether a journal was recorded for this expense
func (r *ExpenseRecord) IsPosted() bool {
	return r.JournalID != nil
}
