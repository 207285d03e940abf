package handler

import (
	invapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryHandler handles stock-related API endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *invapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *invapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// AdjustStockRequest is the request body for POST /stock/adjustments
type AdjustStockRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Delta     string `json:"delta" binding:"required"`
	Reason    string `json:"reason" binding:"omitempty,max=100"`
}

// TransferLineRequest is one line of a transfer request
type TransferLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  string `json:"quantity" binding:"required"`
}

// TransferStockRequest is the request body for POST /stock/transfers
type TransferStockRequest struct {
	FromBranchID string                `json:"from_branch_id" binding:"required,uuid"`
	ToBranchID   string                `json:"to_branch_id" binding:"required,uuid"`
	Notes        string                `json:"notes" binding:"omitempty,max=500"`
	Lines        []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// RegisterRoutes registers the stock routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("/adjustments", h.Adjust)
		stock.POST("/transfers", h.Transfer)
		stock.GET("/transfers/:id", h.GetTransfer)
		stock.GET("/levels", h.ListLevels)
		stock.GET("/levels/:productId", h.GetLevel)
		stock.GET("/movements", h.ListMovements)
	}
}

// Adjust handles POST /stock/adjustments
func (h *InventoryHandler) Adjust(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "product_id must be a valid UUID")
		return
	}
	delta, err := decimal.NewFromString(req.Delta)
	if err != nil {
		h.BadRequest(c, "delta must be a decimal number")
		return
	}

	level, err := h.inventoryService.Adjust(c.Request.Context(), tenantID, getBranchID(c), invapp.AdjustStockRequest{
		ProductID: productID,
		Delta:     delta,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// Transfer handles POST /stock/transfers
func (h *InventoryHandler) Transfer(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	var req TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	appReq, err := h.toTransferRequest(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transfer, err := h.inventoryService.Transfer(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, transfer)
}

// GetTransfer handles GET /stock/transfers/:id
func (h *InventoryHandler) GetTransfer(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "transfer ID must be a valid UUID")
		return
	}

	transfer, err := h.inventoryService.GetTransfer(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transfer)
}

// GetLevel handles GET /stock/levels/:productId for the request's branch
func (h *InventoryHandler) GetLevel(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		h.BadRequest(c, "product ID must be a valid UUID")
		return
	}

	level, err := h.inventoryService.GetLevel(c.Request.Context(), tenantID, getBranchID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// ListLevels handles GET /stock/levels for the request's branch
func (h *InventoryHandler) ListLevels(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	listReq.Normalize()

	levels, total, err := h.inventoryService.ListLevels(c.Request.Context(), tenantID, getBranchID(c), shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, levels, total, listReq.Page, listReq.PageSize)
}

// ListMovements handles GET /stock/movements?source_type=...&source_id=...
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	sourceType := inventory.SourceDocType(c.Query("source_type"))
	if sourceType == "" {
		h.BadRequest(c, "source_type query parameter is required")
		return
	}
	sourceID, err := uuid.Parse(c.Query("source_id"))
	if err != nil {
		h.BadRequest(c, "source_id must be a valid UUID")
		return
	}

	movements, err := h.inventoryService.ListMovementsBySource(c.Request.Context(), tenantID, sourceType, sourceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}

// toTransferRequest converts the wire request to the application request
func (h *InventoryHandler) toTransferRequest(req TransferStockRequest) (invapp.TransferStockRequest, error) {
	appReq := invapp.TransferStockRequest{Notes: req.Notes}

	fromID, err := uuid.Parse(req.FromBranchID)
	if err != nil {
		return appReq, err
	}
	toID, err := uuid.Parse(req.ToBranchID)
	if err != nil {
		return appReq, err
	}
	appReq.FromBranchID = fromID
	appReq.ToBranchID = toID

	appReq.Lines = make([]invapp.TransferLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return appReq, err
		}
		quantity, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			return appReq, err
		}
		appReq.Lines = append(appReq.Lines, invapp.TransferLineInput{
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	return appReq, nil
}
