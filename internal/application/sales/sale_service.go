package sales

import (
	"context"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/sales"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService is the sale transaction composer: it validates a cart,
// computes the totals, and commits the header, the lines and the stock
// decrements in one transaction.
type SaleService struct {
	scope          TransactionScope
	saleRepo       sales.SaleRepository
	eventPublisher shared.EventPublisher
}

// NewSaleService creates a new SaleService. saleRepo serves the read paths;
// all writes go through the transaction scope.
func NewSaleService(scope TransactionScope, saleRepo sales.SaleRepository) *SaleService {
	return &SaleService{scope: scope, saleRepo: saleRepo}
}

// SetEventPublisher sets the publisher for post-commit domain events
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Checkout turns a cart into a committed sale. On any failure - empty
// cart, zero subtotal, unknown product, insufficient stock, or a lower
// layer error - the transaction rolls back and nothing is observable.
func (s *SaleService) Checkout(ctx context.Context, tenantID, branchID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	log := logger.FromContext(ctx)

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart must contain at least one item")
	}

	var committed *sales.Sale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		productIDs := make([]uuid.UUID, 0, len(req.Items))
		for _, item := range req.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := repos.ProductRepo().FindByIDs(ctx, tenantID, productIDs)
		if err != nil {
			return err
		}

		lines := make([]sales.CartLine, 0, len(req.Items))
		for _, item := range req.Items {
			product, ok := products[item.ProductID]
			if !ok {
				return shared.NewDomainErrorf("NOT_FOUND", "Unknown product %s", item.ProductID)
			}
			name := item.Name
			if name == "" {
				name = product.Name
			}
			price := product.SellingPrice
			if item.UnitPrice != nil {
				price = *item.UnitPrice
			}
			lines = append(lines, sales.CartLine{
				ProductID: item.ProductID,
				Name:      name,
				Quantity:  item.Quantity,
				UnitPrice: price,
			})
		}

		invoiceNumber := req.InvoiceNumber
		if invoiceNumber == "" {
			generator := numbering.NewGenerator(repos.SequenceRepo())
			invoiceNumber, err = generator.Next(ctx, tenantID, numbering.DocumentTypeSale)
			if err != nil {
				return err
			}
		} else {
			exists, err := repos.SaleRepo().ExistsByInvoiceNumber(ctx, tenantID, invoiceNumber)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewDomainErrorf("ALREADY_EXISTS", "Invoice number %s already exists", invoiceNumber)
			}
		}

		sale, err := sales.NewSale(tenantID, branchID, invoiceNumber, sales.Cart{
			Lines:           lines,
			CustomerID:      req.CustomerID,
			CustomerName:    req.CustomerName,
			DiscountAmount:  req.DiscountAmount,
			DiscountPercent: req.DiscountPercent,
			TaxPercent:      req.TaxPercent,
			Notes:           req.Notes,
			SaleDate:        req.SaleDate,
		})
		if err != nil {
			return err
		}
		if err := sale.CheckInvariants(); err != nil {
			return err
		}

		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}

		stockLedger := inventory.NewStockLedger(repos.StockLevelRepo(), repos.StockMovementRepo())
		if err := stockLedger.DecrementForSale(ctx, tenantID, branchID, sale.QuantityByProduct(), products, sale.ID); err != nil {
			return err
		}

		committed = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("sale committed",
		zap.String("sale_id", committed.ID.String()),
		zap.String("invoice_no", committed.InvoiceNumber),
		zap.Int64("total_units", committed.Total.Units()),
	)
	s.publishEvents(ctx, committed)

	return &CheckoutResponse{
		ID:            committed.ID,
		InvoiceNumber: committed.InvoiceNumber,
		BranchID:      committed.BranchID,
		Subtotal:      committed.Subtotal,
		Discount:      committed.Discount,
		Tax:           committed.Tax,
		Total:         committed.Total,
	}, nil
}

// GetByID retrieves a sale with its lines
func (s *SaleService) GetByID(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByInvoiceNumber retrieves a sale by its reference code
func (s *SaleService) GetByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByInvoiceNumber(ctx, tenantID, invoiceNumber)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sales for a tenant with pagination
func (s *SaleService) List(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	items, total, err := s.saleRepo.FindAllForTenant(ctx, tenantID, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToSaleResponse(&items[i]))
	}
	return responses, total, nil
}

// publishEvents hands the aggregate's events to the publisher after commit.
// Publish failures are logged and swallowed; the sale is already durable.
func (s *SaleService) publishEvents(ctx context.Context, sale *sales.Sale) {
	if s.eventPublisher == nil {
		return
	}
	events := sale.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.FromContext(ctx).Warn("failed to publish sale events", zap.Error(err))
	}
	sale.ClearDomainEvents()
}
