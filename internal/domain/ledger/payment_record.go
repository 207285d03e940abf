package ledger

import (
	"strings"
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentRecord is the source document for money received against a
// receivable. Like ExpenseRecord, the row always commits; the journal
// back-link is stamped only when posting was possible.
type PaymentRecord struct {
	shared.TenantAggregateRoot
	Reference   string            `gorm:"size:40;not null;uniqueIndex:idx_payment_records_tenant_ref,priority:2"`
	Method      string            `gorm:"size:50;not null"`
	Amount      valueobject.Money `gorm:"not null"`
	Payer       string            `gorm:"size:200"`
	Description string            `gorm:"size:500"`
	ReceivedAt  time.Time         `gorm:"not null"`
	JournalID   *uuid.UUID        `gorm:"type:uuid;index"`
	PostedAt    *time.Time
}

// TableName returns the table name for GORM
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// NewPaymentRecord creates a payment source document
func NewPaymentRecord(tenantID uuid.UUID, reference, method string, amount valueobject.Money, payer, description string, receivedAt time.Time) (*PaymentRecord, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Payment reference cannot be empty")
	}
	if strings.TrimSpace(method) == "" {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	return &PaymentRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		Method:              strings.TrimSpace(method),
		Amount:              amount,
		Payer:               payer,
		Description:         description,
		ReceivedAt:          receivedAt,
	}, nil
}

// LinkJournal stamps the one-way back-link to the posted journal
func (r *PaymentRecord) LinkJournal(journalID uuid.UUID) {
	now := time.Now()
	r.JournalID = &journalID
	r.PostedAt = &now
	r.Touch()
	r.IncrementVersion()
}

// IsPosted reports whether a journal was recorded for this payment
func (r *PaymentRecord) IsPosted() bool {
	return r.JournalID != nil
}
