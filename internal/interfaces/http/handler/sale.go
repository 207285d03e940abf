package handler

import (
	"time"

	salesapp "github.com/retailcore/backend/internal/application/sales"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleHandler handles sale-related API endpoints
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// CheckoutItemRequest is one cart line in a checkout request
type CheckoutItemRequest struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Name      string  `json:"name" binding:"omitempty,max=200"`
	Quantity  string  `json:"quantity" binding:"required"`
	UnitPrice *string `json:"unit_price"`
}

// CheckoutRequest is the request body for POST /sales
type CheckoutRequest struct {
	Items           []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
	CustomerID      *string               `json:"customer_id" binding:"omitempty,uuid"`
	CustomerName    string                `json:"customer_name" binding:"omitempty,max=200"`
	DiscountAmount  *string               `json:"discount_amount"`
	DiscountPercent *string               `json:"discount_percent"`
	TaxPercent      *string               `json:"tax_percent"`
	Notes           string                `json:"notes" binding:"omitempty,max=500"`
	SaleDate        *time.Time            `json:"sale_date"`
	InvoiceNumber   string                `json:"invoice_no" binding:"omitempty,max=40"`
}

// RegisterRoutes registers the sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.Checkout)
		sales.GET("", h.List)
		sales.GET("/:id", h.GetByID)
		sales.GET("/invoice/:number", h.GetByInvoiceNumber)
	}
}

// Checkout handles POST /sales
func (h *SaleHandler) Checkout(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	appReq, err := h.toAppRequest(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.saleService.Checkout(c.Request.Context(), tenantID, getBranchID(c), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID handles GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "sale ID must be a valid UUID")
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetByInvoiceNumber handles GET /sales/invoice/:number
func (h *SaleHandler) GetByInvoiceNumber(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.MissingTenant(c)
		return
	}

	sale, err := h.saleService.GetByInvoiceNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
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

	items, total, err := h.saleService.List(c.Request.Context(), tenantID, salesapp.SaleListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, listReq.Page, listReq.PageSize)
}

// toAppRequest converts the wire request to the application request,
// parsing decimal strings so amounts never ride through float64
func (h *SaleHandler) toAppRequest(req CheckoutRequest) (salesapp.CheckoutRequest, error) {
	appReq := salesapp.CheckoutRequest{
		CustomerName:  req.CustomerName,
		Notes:         req.Notes,
		SaleDate:      req.SaleDate,
		InvoiceNumber: req.InvoiceNumber,
	}

	if req.CustomerID != nil {
		customerID, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return appReq, err
		}
		appReq.CustomerID = &customerID
	}

	if req.DiscountAmount != nil {
		amount, err := valueobject.NewMoneyFromString(*req.DiscountAmount)
		if err != nil {
			return appReq, err
		}
		appReq.DiscountAmount = amount
	}
	if req.DiscountPercent != nil {
		percent, err := decimal.NewFromString(*req.DiscountPercent)
		if err != nil {
			return appReq, err
		}
		appReq.DiscountPercent = percent
	}
	if req.TaxPercent != nil {
		percent, err := decimal.NewFromString(*req.TaxPercent)
		if err != nil {
			return appReq, err
		}
		appReq.TaxPercent = percent
	}

	appReq.Items = make([]salesapp.CheckoutItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return appReq, err
		}
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return appReq, err
		}

		input := salesapp.CheckoutItemInput{
			ProductID: productID,
			Name:      item.Name,
			Quantity:  quantity,
		}
		if item.UnitPrice != nil {
			price, err := valueobject.NewMoneyFromString(*item.UnitPrice)
			if err != nil {
				return appReq, err
			}
			input.UnitPrice = &price
		}
		appReq.Items = append(appReq.Items, input)
	}

	return appReq, nil
}
