package ledger

import (
	"time"

	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PostJournalRequest posts one balanced journal: Amount debited on the
// account resolved by DebitAccountCode and credited on the one resolved by
// CreditAccountCode. Reference is optional; empty draws the next JRN code.
type PostJournalRequest struct {
	Reference         string               `json:"reference"`
	JournalDate       time.Time            `json:"journal_date"`
	Memo              string               `json:"memo"`
	Amount            valueobject.Money    `json:"amount"`
	DebitAccountCode  string               `json:"debit_account_code"`
	CreditAccountCode string               `json:"credit_account_code"`
	SourceType        ledger.SourceDocType `json:"source_type,omitempty"`
	SourceID          *uuid.UUID           `json:"source_id,omitempty"`
}

// PostingResult reports what the best-effort poster did. Skipped journals
// are not failures: the caller's own document still commits.
type PostingResult struct {
	Skipped    bool             `json:"skipped"`
	SkipReason string           `json:"skip_reason,omitempty"`
	Journal    *JournalResponse `json:"journal,omitempty"`
}

// JournalResponse is a posted journal with its two entries
type JournalResponse struct {
	ID          uuid.UUID              `json:"id"`
	Reference   string                 `json:"reference"`
	JournalDate time.Time              `json:"journal_date"`
	Memo        string                 `json:"memo,omitempty"`
	TotalDebit  valueobject.Money      `json:"total_debit"`
	TotalCredit valueobject.Money      `json:"total_credit"`
	Entries     []JournalEntryResponse `json:"entries"`
}

// JournalEntryResponse is one side of a posting
type JournalEntryResponse struct {
	ID        uuid.UUID         `json:"id"`
	AccountID uuid.UUID         `json:"account_id"`
	Debit     valueobject.Money `json:"debit"`
	Credit    valueobject.Money `json:"credit"`
}

// ToJournalResponse maps a journal aggregate to its response shape
func ToJournalResponse(journal *ledger.Journal) JournalResponse {
	entries := make([]JournalEntryResponse, 0, len(journal.Entries))
	for _, entry := range journal.Entries {
		entries = append(entries, JournalEntryResponse{
			ID:        entry.ID,
			AccountID: entry.AccountID,
			Debit:     entry.Debit,
			Credit:    entry.Credit,
		})
	}
	return JournalResponse{
		ID:          journal.ID,
		Reference:   journal.Reference,
		JournalDate: journal.JournalDate,
		Memo:        journal.Memo,
		TotalDebit:  journal.TotalDebit(),
		TotalCredit: journal.TotalCredit(),
		Entries:     entries,
	}
}

// RecordExpenseRequest records an expense and best-effort posts its journal
// (debit the expense account, credit cash). Empty account codes fall back
// to the service defaults.
type RecordExpenseRequest struct {
	Category          string            `json:"category"`
	Amount            valueobject.Money `json:"amount"`
	Description       string            `json:"description"`
	IncurredAt        time.Time         `json:"incurred_at"`
	DebitAccountCode  string            `json:"debit_account_code,omitempty"`
	CreditAccountCode string            `json:"credit_account_code,omitempty"`
}

// ExpenseResponse is a recorded expense with its posting outcome
type ExpenseResponse struct {
	ID          uuid.UUID         `json:"id"`
	Reference   string            `json:"reference"`
	Category    string            `json:"category"`
	Amount      valueobject.Money `json:"amount"`
	Description string            `json:"description,omitempty"`
	IncurredAt  time.Time         `json:"incurred_at"`
	JournalID   *uuid.UUID        `json:"journal_id,omitempty"`
	Posted      bool              `json:"posted"`
	SkipReason  string            `json:"skip_reason,omitempty"`
}

// ToExpenseResponse maps an expense record to its response shape
func ToExpenseResponse(record *ledger.ExpenseRecord, skipReason string) ExpenseResponse {
	return ExpenseResponse{
		ID:          record.ID,
		Reference:   record.Reference,
		Category:    record.Category,
		Amount:      record.Amount,
		Description: record.Description,
		IncurredAt:  record.IncurredAt,
		JournalID:   record.JournalID,
		Posted:      record.IsPosted(),
		SkipReason:  skipReason,
	}
}

// RecordPaymentRequest records money received and best-effort posts its
// journal (debit cash, credit the receivable account).
type RecordPaymentRequest struct {
	Method            string            `json:"method"`
	Amount            valueobject.Money `json:"amount"`
	Payer             string            `json:"payer"`
	Description       string            `json:"description"`
	ReceivedAt        time.Time         `json:"received_at"`
	DebitAccountCode  string            `json:"debit_account_code,omitempty"`
	CreditAccountCode string            `json:"credit_account_code,omitempty"`
}

// PaymentResponse is a recorded payment with its posting outcome
type PaymentResponse struct {
	ID         uuid.UUID         `json:"id"`
	Reference  string            `json:"reference"`
	Method     string            `json:"method"`
	Amount     valueobject.Money `json:"amount"`
	Payer      string            `json:"payer,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
	JournalID  *uuid.UUID        `json:"journal_id,omitempty"`
	Posted     bool              `json:"posted"`
	SkipReason string            `json:"skip_reason,omitempty"`
}

// ToPaymentResponse maps a payment record to its response shape
func ToPaymentResponse(record *ledger.PaymentRecord, skipReason string) PaymentResponse {
	return PaymentResponse{
		ID:         record.ID,
		Reference:  record.Reference,
		Method:     record.Method,
		Amount:     record.Amount,
		Payer:      record.Payer,
		ReceivedAt: record.ReceivedAt,
		JournalID:  record.JournalID,
		Posted:     record.IsPosted(),
		SkipReason: skipReason,
	}
}
