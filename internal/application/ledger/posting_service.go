package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountDefaults are the account codes the expense and payment envelopes
// post against when the request does not name its own.
type AccountDefaults struct {
	ExpenseCode    string
	CashCode       string
	ReceivableCode string
}

// DefaultAccounts returns the conventional chart-of-accounts codes
func DefaultAccounts() AccountDefaults {
	return AccountDefaults{
		ExpenseCode:    "5000",
		CashCode:       "1010",
		ReceivableCode: "1100",
	}
}

// PostingService is the double-entry ledger poster. Posting is best-effort:
// when the ledger tables are absent from the deployment or an account code
// cannot be resolved, the posting is skipped with a warning instead of
// failing the caller's transaction. A skipped journal is reported, never
// silently lost.
type PostingService struct {
	scope          TransactionScope
	journalRepo    ledger.JournalRepository
	expenseRepo    ledger.ExpenseRecordRepository
	paymentRepo    ledger.PaymentRecordRepository
	capabilities   shared.SchemaCapabilities
	defaults       AccountDefaults
	eventPublisher shared.EventPublisher
}

// NewPostingService creates a new PostingService. The repositories serve
// the read paths; all writes go through the transaction scope.
func NewPostingService(
	scope TransactionScope,
	journalRepo ledger.JournalRepository,
	expenseRepo ledger.ExpenseRecordRepository,
	paymentRepo ledger.PaymentRecordRepository,
	capabilities shared.SchemaCapabilities,
	defaults AccountDefaults,
) *PostingService {
	return &PostingService{
		scope:        scope,
		journalRepo:  journalRepo,
		expenseRepo:  expenseRepo,
		paymentRepo:  paymentRepo,
		capabilities: capabilities,
		defaults:     defaults,
	}
}

// SetEventPublisher sets the publisher for post-commit domain events
func (s *PostingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ledgerTablesPresent gates every posting attempt. Deployments that never
// ran the ledger migrations simply do not post.
func (s *PostingService) ledgerTablesPresent() bool {
	if s.capabilities == nil {
		return true
	}
	return s.capabilities.TableExists("journals") &&
		s.capabilities.TableExists("journal_entries") &&
		s.capabilities.TableExists("ledger_accounts")
}

// PostDoubleEntry posts one balanced journal of exactly two entries. It
// returns a skipped result, not an error, when the ledger tables are
// missing or either account code does not resolve.
func (s *PostingService) PostDoubleEntry(ctx context.Context, tenantID uuid.UUID, req PostJournalRequest) (*PostingResult, error) {
	log := logger.FromContext(ctx)

	if !s.ledgerTablesPresent() {
		log.Warn("ledger posting skipped", zap.String("reason", "ledger tables missing"))
		return &PostingResult{Skipped: true, SkipReason: "ledger tables missing"}, nil
	}

	var journal *ledger.Journal
	var skipReason string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		journal, skipReason, err = s.post(ctx, repos, tenantID, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	if skipReason != "" {
		log.Warn("ledger posting skipped", zap.String("reason", skipReason))
		return &PostingResult{Skipped: true, SkipReason: skipReason}, nil
	}

	log.Info("journal posted",
		zap.String("journal_id", journal.ID.String()),
		zap.String("reference", journal.Reference),
		zap.Int64("amount_units", journal.TotalDebit().Units()),
	)
	s.publishEvents(ctx, journal)

	response := ToJournalResponse(journal)
	return &PostingResult{Journal: &response}, nil
}

// post resolves both accounts and writes the journal inside the caller's
// transaction. A nonempty skip reason with a nil error means nothing was
// written and the caller's own work should proceed.
func (s *PostingService) post(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, req PostJournalRequest) (*ledger.Journal, string, error) {
	debit, err := repos.AccountRepo().FindByCode(ctx, tenantID, req.DebitAccountCode)
	if err != nil {
		if isNotFound(err) {
			return nil, "debit account " + req.DebitAccountCode + " not found", nil
		}
		return nil, "", err
	}
	credit, err := repos.AccountRepo().FindByCode(ctx, tenantID, req.CreditAccountCode)
	if err != nil {
		if isNotFound(err) {
			return nil, "credit account " + req.CreditAccountCode + " not found", nil
		}
		return nil, "", err
	}

	reference := req.Reference
	if reference == "" {
		generator := numbering.NewGenerator(repos.SequenceRepo())
		reference, err = generator.Next(ctx, tenantID, numbering.DocumentTypeJournal)
		if err != nil {
			return nil, "", err
		}
	}

	journalDate := req.JournalDate
	if journalDate.IsZero() {
		journalDate = time.Now()
	}

	journal, err := ledger.NewBalancedJournal(
		tenantID, reference, journalDate, req.Memo,
		req.Amount, debit.ID, credit.ID, req.SourceType, req.SourceID)
	if err != nil {
		return nil, "", err
	}
	if err := journal.CheckBalance(); err != nil {
		return nil, "", err
	}
	if err := repos.JournalRepo().Save(ctx, journal); err != nil {
		return nil, "", err
	}
	return journal, "", nil
}

// RecordExpense persists an expense document and best-effort posts its
// journal (debit expense, credit cash). The expense commits even when the
// posting is skipped; a posting that fails outright rolls both back.
func (s *PostingService) RecordExpense(ctx context.Context, tenantID uuid.UUID, req RecordExpenseRequest) (*ExpenseResponse, error) {
	log := logger.FromContext(ctx)

	debitCode := req.DebitAccountCode
	if debitCode == "" {
		debitCode = s.defaults.ExpenseCode
	}
	creditCode := req.CreditAccountCode
	if creditCode == "" {
		creditCode = s.defaults.CashCode
	}

	var record *ledger.ExpenseRecord
	var journal *ledger.Journal
	var skipReason string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		generator := numbering.NewGenerator(repos.SequenceRepo())
		reference, err := generator.Next(ctx, tenantID, numbering.DocumentTypeExpense)
		if err != nil {
			return err
		}

		incurredAt := req.IncurredAt
		if incurredAt.IsZero() {
			incurredAt = time.Now()
		}
		record, err = ledger.NewExpenseRecord(tenantID, reference, req.Category, req.Amount, req.Description, incurredAt)
		if err != nil {
			return err
		}
		if err := repos.ExpenseRepo().Save(ctx, record); err != nil {
			return err
		}

		if !s.ledgerTablesPresent() {
			skipReason = "ledger tables missing"
			return nil
		}
		journal, skipReason, err = s.post(ctx, repos, tenantID, PostJournalRequest{
			JournalDate:       incurredAt,
			Memo:              "Expense " + reference + ": " + req.Category,
			Amount:            req.Amount,
			DebitAccountCode:  debitCode,
			CreditAccountCode: creditCode,
			SourceType:        ledger.SourceDocExpense,
			SourceID:          &record.ID,
		})
		if err != nil || skipReason != "" {
			return err
		}

		record.LinkJournal(journal.ID)
		return repos.ExpenseRepo().Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	if skipReason != "" {
		log.Warn("ledger posting skipped",
			zap.String("reason", skipReason),
			zap.String("expense_reference", record.Reference),
		)
	} else {
		log.Info("expense posted",
			zap.String("expense_reference", record.Reference),
			zap.String("journal_reference", journal.Reference),
		)
		s.publishEvents(ctx, journal)
	}

	response := ToExpenseResponse(record, skipReason)
	return &response, nil
}

// RecordPayment persists a payment document and best-effort posts its
// journal (debit cash, credit the receivable account).
func (s *PostingService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	log := logger.FromContext(ctx)

	debitCode := req.DebitAccountCode
	if debitCode == "" {
		debitCode = s.defaults.CashCode
	}
	creditCode := req.CreditAccountCode
	if creditCode == "" {
		creditCode = s.defaults.ReceivableCode
	}

	var record *ledger.PaymentRecord
	var journal *ledger.Journal
	var skipReason string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		generator := numbering.NewGenerator(repos.SequenceRepo())
		reference, err := generator.Next(ctx, tenantID, numbering.DocumentTypePayment)
		if err != nil {
			return err
		}

		receivedAt := req.ReceivedAt
		if receivedAt.IsZero() {
			receivedAt = time.Now()
		}
		record, err = ledger.NewPaymentRecord(tenantID, reference, req.Method, req.Amount, req.Payer, req.Description, receivedAt)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, record); err != nil {
			return err
		}

		if !s.ledgerTablesPresent() {
			skipReason = "ledger tables missing"
			return nil
		}
		journal, skipReason, err = s.post(ctx, repos, tenantID, PostJournalRequest{
			JournalDate:       receivedAt,
			Memo:              "Payment " + reference + " from " + req.Payer,
			Amount:            req.Amount,
			DebitAccountCode:  debitCode,
			CreditAccountCode: creditCode,
			SourceType:        ledger.SourceDocPayment,
			SourceID:          &record.ID,
		})
		if err != nil || skipReason != "" {
			return err
		}

		record.LinkJournal(journal.ID)
		return repos.PaymentRepo().Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	if skipReason != "" {
		log.Warn("ledger posting skipped",
			zap.String("reason", skipReason),
			zap.String("payment_reference", record.Reference),
		)
	} else {
		log.Info("payment posted",
			zap.String("payment_reference", record.Reference),
			zap.String("journal_reference", journal.Reference),
		)
		s.publishEvents(ctx, journal)
	}

	response := ToPaymentResponse(record, skipReason)
	return &response, nil
}

// GetJournal retrieves a journal with its entries
func (s *PostingService) GetJournal(ctx context.Context, tenantID, journalID uuid.UUID) (*JournalResponse, error) {
	journal, err := s.journalRepo.FindByIDForTenant(ctx, tenantID, journalID)
	if err != nil {
		return nil, err
	}
	response := ToJournalResponse(journal)
	return &response, nil
}

// GetJournalBySource retrieves the journal posted for a source document
func (s *PostingService) GetJournalBySource(ctx context.Context, tenantID uuid.UUID, sourceType ledger.SourceDocType, sourceID uuid.UUID) (*JournalResponse, error) {
	journal, err := s.journalRepo.FindBySource(ctx, tenantID, sourceType, sourceID)
	if err != nil {
		return nil, err
	}
	response := ToJournalResponse(journal)
	return &response, nil
}

// GetExpense retrieves an expense record
func (s *PostingService) GetExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	record, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(record, "")
	return &response, nil
}

// GetPayment retrieves a payment record
func (s *PostingService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	record, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(record, "")
	return &response, nil
}

func isNotFound(err error) bool {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code == "NOT_FOUND"
	}
	return false
}

func (s *PostingService) publishEvents(ctx context.Context, journal *ledger.Journal) {
	if s.eventPublisher == nil || journal == nil {
		return
	}
	events := journal.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.FromContext(ctx).Warn("failed to publish journal events", zap.Error(err))
	}
	journal.ClearDomainEvents()
}
