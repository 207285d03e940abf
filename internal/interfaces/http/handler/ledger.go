package handler

import (
	"time"

	ledgerapp "github.com/retailcore/backend/internal/application/ledger"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles journal, expense and payment API endpoints
type LedgerHandler struct {
	BaseHandler
	postingService *ledgerapp.PostingService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(postingService *ledgerapp.PostingService) *LedgerHandler {
	return &LedgerHandler{postingService: postingService}
}

// PostJournalRequest is the request body for POST /ledger/journals
type PostJournalRequest struct {
	Reference         string     `json:"reference" binding:"omitempty,max=40"`
	JournalDate       *time.Time `json:"journal_date"`
	Memo              string     `json:"memo" binding:"omitempty,max=500"`
	Amount            string     `json:"amount" binding:"required"`
	DebitAccountCode  string     `json:"debit_account_code" binding:"required,max=20"`
	CreditAccountCode string     `json:"credit_account_code" binding:"required,max=20"`
	SourceType        string     `json:"source_type" binding:"omitempty,max=20"`
	SourceID          *string    `json:"source_id" binding:"omitempty,uuid"`
}

// RecordExpenseRequest is the request body for POST /ledger/expenses
type RecordExpenseRequest struct {
	Category          string     `json:"category" binding:"required,max=100"`
	Amount            string     `json:"amount" binding:"required"`
	Description       string     `json:"description" binding:"omitempty,max=500"`
	IncurredAt        *time.Time `json:"incurred_at"`
	DebitAccountCode  string     `json:"debit_account_code" binding:"omitempty,max=20"`
	CreditAccountCode string     `json:"credit_account_code" binding:"omitempty,max=20"`
}

// RecordPaymentRequest is the request body for POST /ledger/payments
type RecordPaymentRequest struct {
	Method            string     `json:"method" binding:"required,max=50"`
	Amount            string     `json:"amount" binding:"required"`
	Payer             string     `json:"payer" binding:"omitempty,max=200"`
	Description       string     `json:"description" binding:"omitempty,max=500"`
	ReceivedAt        *time.Time `json:"received_at"`
	DebitAccountCode  string     `json:"debit_account_code" binding:"omitempty,max=20"`
	CreditAccountCode string     `json:"credit_account_code" binding:"omitempty,max=20"`
}

// RegisterRoutes registers the ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lg := rg.Group("/ledger")
	{
		lg.POST("/journals", h.PostJournal)
		lg.GET("/journals/:id", h.GetJournal)
		lg.GET("/journals", h.GetJournalBySource)
		lg.POST("/expenses", h.RecordExpense)
		lg.GET("/expenses/:id", h.GetExpense)
		lg.POST("/payments", h.RecordPayment)
		lg.GET("/payments/:id", h.GetPayment)
	}
}

// PostJournal handles POST /ledger/journals
func (h *LedgerHandler) PostJournal(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	var req PostJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "amount must be a decimal number")
		return
	}

	appReq := ledgerapp.PostJournalRequest{
		Reference:         req.Reference,
		Memo:              req.Memo,
		Amount:            amount,
		DebitAccountCode:  req.DebitAccountCode,
		CreditAccountCode: req.CreditAccountCode,
		SourceType:        ledger.SourceDocType(req.SourceType),
	}
	if req.JournalDate != nil {
		appReq.JournalDate = *req.JournalDate
	} else {
		appReq.JournalDate = time.Now()
	}
	if req.SourceID != nil {
		sourceID, err := uuid.Parse(*req.SourceID)
		if err != nil {
			h.BadRequest(c, "source_id must be a valid UUID")
			return
		}
		appReq.SourceID = &sourceID
	}

	result, err := h.postingService.PostDoubleEntry(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetJournal handles GET /ledger/journals/:id
func (h *LedgerHandler) GetJournal(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "journal ID must be a valid UUID")
		return
	}

	journal, err := h.postingService.GetJournal(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, journal)
}

// GetJournalBySource handles GET /ledger/journals?source_type=...&source_id=...
func (h *LedgerHandler) GetJournalBySource(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	sourceType := ledger.SourceDocType(c.Query("source_type"))
	if sourceType == "" {
		h.BadRequest(c, "source_type query parameter is required")
		return
	}
	sourceID, err := uuid.Parse(c.Query("source_id"))
	if err != nil {
		h.BadRequest(c, "source_id must be a valid UUID")
		return
	}

	journal, err := h.postingService.GetJournalBySource(c.Request.Context(), tenantID, sourceType, sourceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, journal)
}

// RecordExpense handles POST /ledger/expenses
func (h *LedgerHandler) RecordExpense(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	var req RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "amount must be a decimal number")
		return
	}

	appReq := ledgerapp.RecordExpenseRequest{
		Category:          req.Category,
		Amount:            amount,
		Description:       req.Description,
		DebitAccountCode:  req.DebitAccountCode,
		CreditAccountCode: req.CreditAccountCode,
	}
	if req.IncurredAt != nil {
		appReq.IncurredAt = *req.IncurredAt
	} else {
		appReq.IncurredAt = time.Now()
	}

	expense, err := h.postingService.RecordExpense(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, expense)
}

// GetExpense handles GET /ledger/expenses/:id
func (h *LedgerHandler) GetExpense(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "expense ID must be a valid UUID")
		return
	}

	expense, err := h.postingService.GetExpense(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, expense)
}

// RecordPayment handles POST /ledger/payments
func (h *LedgerHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "amount must be a decimal number")
		return
	}

	appReq := ledgerapp.RecordPaymentRequest{
		Method:            req.Method,
		Amount:            amount,
		Payer:             req.Payer,
		Description:       req.Description,
		DebitAccountCode:  req.DebitAccountCode,
		CreditAccountCode: req.CreditAccountCode,
	}
	if req.ReceivedAt != nil {
		appReq.ReceivedAt = *req.ReceivedAt
	} else {
		appReq.ReceivedAt = time.Now()
	}

	payment, err := h.postingService.RecordPayment(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetPayment handles GET /ledger/payments/:id
func (h *LedgerHandler) GetPayment(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "payment ID must be a valid UUID")
		return
	}

	payment, err := h.postingService.GetPayment(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}
