package sales

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
	domainsales "github.com/retailcore/backend/internal/domain/sales"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory store implementing every repository checkout
// touches. Execute serializes callers and restores a snapshot when the
// function fails, mirroring the commit/rollback semantics of the real
// transactional scope.
type fakeStore struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*catalog.Product
	sales     map[uuid.UUID]*domainsales.Sale
	levels    map[inventory.StockKey]decimal.Decimal
	movements []inventory.StockMovement
	sequences map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  make(map[uuid.UUID]*catalog.Product),
		sales:     make(map[uuid.UUID]*domainsales.Sale),
		levels:    make(map[inventory.StockKey]decimal.Decimal),
		sequences: make(map[string]int64),
	}
}

type storeSnapshot struct {
	sales     map[uuid.UUID]*domainsales.Sale
	levels    map[inventory.StockKey]decimal.Decimal
	movements []inventory.StockMovement
	sequences map[string]int64
}

func (f *fakeStore) snapshot() storeSnapshot {
	s := storeSnapshot{
		sales:     make(map[uuid.UUID]*domainsales.Sale, len(f.sales)),
		levels:    make(map[inventory.StockKey]decimal.Decimal, len(f.levels)),
		movements: append([]inventory.StockMovement(nil), f.movements...),
		sequences: make(map[string]int64, len(f.sequences)),
	}
	for k, v := range f.sales {
		s.sales[k] = v
	}
	for k, v := range f.levels {
		s.levels[k] = v
	}
	for k, v := range f.sequences {
		s.sequences[k] = v
	}
	return s
}

func (f *fakeStore) restore(s storeSnapshot) {
	f.sales = s.sales
	f.levels = s.levels
	f.movements = s.movements
	f.sequences = s.sequences
}

// Execute implements TransactionScope
func (f *fakeStore) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeStore) SaleRepo() domainsales.SaleRepository            { return (*fakeSaleRepo)(f) }
func (f *fakeStore) ProductRepo() catalog.ProductRepository          { return (*fakeProductRepo)(f) }
func (f *fakeStore) StockLevelRepo() inventory.StockLevelRepository  { return (*fakeLevelRepo)(f) }
func (f *fakeStore) StockMovementRepo() inventory.StockMovementRepository {
	return (*fakeMovementRepo)(f)
}
func (f *fakeStore) SequenceRepo() numbering.SequenceRepository { return (*fakeSeqRepo)(f) }

type fakeSaleRepo fakeStore

func (r *fakeSaleRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*domainsales.Sale, error) {
	if sale, ok := r.sales[id]; ok && sale.TenantID == tenantID {
		return sale, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSaleRepo) FindByInvoiceNumber(_ context.Context, tenantID uuid.UUID, invoiceNumber string) (*domainsales.Sale, error) {
	for _, sale := range r.sales {
		if sale.TenantID == tenantID && sale.InvoiceNumber == invoiceNumber {
			return sale, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSaleRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]domainsales.Sale, int64, error) {
	var out []domainsales.Sale
	for _, sale := range r.sales {
		if sale.TenantID == tenantID {
			out = append(out, *sale)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeSaleRepo) ExistsByInvoiceNumber(_ context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error) {
	for _, sale := range r.sales {
		if sale.TenantID == tenantID && sale.InvoiceNumber == invoiceNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSaleRepo) Save(_ context.Context, sale *domainsales.Sale) error {
	r.sales[sale.ID] = sale
	return nil
}

type fakeProductRepo fakeStore

func (r *fakeProductRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.products[id]; ok && p.TenantID == tenantID {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	out := make(map[uuid.UUID]*catalog.Product)
	for _, id := range ids {
		if p, ok := r.products[id]; ok && p.TenantID == tenantID {
			out[id] = p
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.products[product.ID] = product
	return nil
}

type fakeLevelRepo fakeStore

func (r *fakeLevelRepo) LockForUpdate(_ context.Context, tenantID uuid.UUID, keys []inventory.StockKey) (map[inventory.StockKey]*inventory.StockLevel, error) {
	out := make(map[inventory.StockKey]*inventory.StockLevel)
	for _, key := range keys {
		qty, ok := r.levels[key]
		if !ok {
			continue
		}
		level, err := inventory.NewStockLevel(tenantID, key.BranchID, key.ProductID)
		if err != nil {
			return nil, err
		}
		level.Quantity = qty
		out[key] = level
	}
	return out, nil
}

func (r *fakeLevelRepo) FindByKey(_ context.Context, _ uuid.UUID, branchID, productID uuid.UUID) (*inventory.StockLevel, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeLevelRepo) FindByBranch(_ context.Context, _, _ uuid.UUID, _ shared.Filter) ([]inventory.StockLevel, int64, error) {
	return nil, 0, nil
}

func (r *fakeLevelRepo) Save(_ context.Context, level *inventory.StockLevel) error {
	r.levels[inventory.StockKey{BranchID: level.BranchID, ProductID: level.ProductID}] = level.Quantity
	return nil
}

func (r *fakeLevelRepo) Create(_ context.Context, level *inventory.StockLevel) error {
	key := inventory.StockKey{BranchID: level.BranchID, ProductID: level.ProductID}
	if _, exists := r.levels[key]; exists {
		return shared.ErrAlreadyExists
	}
	r.levels[key] = level.Quantity
	return nil
}

type fakeMovementRepo fakeStore

func (r *fakeMovementRepo) Append(_ context.Context, movement *inventory.StockMovement) error {
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *fakeMovementRepo) FindBySource(_ context.Context, _ uuid.UUID, sourceType inventory.SourceDocType, sourceID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.SourceType == sourceType && m.SourceID != nil && *m.SourceID == sourceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) SumForScope(_ context.Context, _ uuid.UUID, branchID, productID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.BranchID == branchID && m.ProductID == productID {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	return sum, nil
}

type fakeSeqRepo fakeStore

func (r *fakeSeqRepo) NextNumber(_ context.Context, tenantID uuid.UUID, docType numbering.DocumentType, year int) (int64, error) {
	key := fmt.Sprintf("%s|%s|%d", tenantID, docType, year)
	r.sequences[key]++
	return r.sequences[key], nil
}

func seedProduct(t *testing.T, store *fakeStore, tenantID uuid.UUID, name string, tracked bool, priceUnits int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, "SKU-"+name, name, tracked, valueobject.NewMoney(priceUnits))
	require.NoError(t, err)
	store.products[product.ID] = product
	return product
}

func seedStock(store *fakeStore, branchID uuid.UUID, productID uuid.UUID, qty int64) {
	store.levels[inventory.StockKey{BranchID: branchID, ProductID: productID}] = decimal.NewFromInt(qty)
}

func item(productID uuid.UUID, qty int64, priceUnits int64) CheckoutItemInput {
	price := valueobject.NewMoney(priceUnits)
	return CheckoutItemInput{ProductID: productID, Quantity: decimal.NewFromInt(qty), UnitPrice: &price}
}

func TestSaleService_Checkout(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	branchID := uuid.New()

	t.Run("commits sale with computed totals", func(t *testing.T) {
		// two lines of 2x100.00 and 1x50.00 with a 10 percent discount and 5 percent tax
		store := newFakeStore()
		service := NewSaleService(store, store.SaleRepo())
		widget := seedProduct(t, store, tenantID, "Widget", true, 10000)
		gadget := seedProduct(t, store, tenantID, "Gadget", true, 5000)
		seedStock(store, branchID, widget.ID, 10)
		seedStock(store, branchID, gadget.ID, 10)

		resp, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items: []CheckoutItemInput{
				item(widget.ID, 2, 10000),
				item(gadget.ID, 1, 5000),
			},
			DiscountPercent: decimal.NewFromInt(10),
			TaxPercent:      decimal.NewFromInt(5),
		})
		require.NoError(t, err)

		assert.Equal(t, "INV-", resp.InvoiceNumber[:4])
		assert.Equal(t, branchID, resp.BranchID)
		assert.Equal(t, int64(25000), resp.Subtotal.Units())
		assert.Equal(t, int64(2500), resp.Discount.Units())
		assert.Equal(t, int64(1125), resp.Tax.Units())
		assert.Equal(t, int64(23625), resp.Total.Units())

		// stock was decremented and movements written
		assert.True(t, store.levels[inventory.StockKey{BranchID: branchID, ProductID: widget.ID}].Equal(decimal.NewFromInt(8)))
		assert.True(t, store.levels[inventory.StockKey{BranchID: branchID, ProductID: gadget.ID}].Equal(decimal.NewFromInt(9)))
		assert.Len(t, store.movements, 2)

		// the stored sale reproduces its subtotal from its lines
		sale := store.sales[resp.ID]
		require.NotNil(t, sale)
		assert.True(t, sale.LineTotalSum().Equal(sale.Subtotal))
	})

	t.Run("insufficient stock rolls everything back", func(t *testing.T) {
		// product P at the branch has stock 3; the sale requests 5
		store := newFakeStore()
		service := NewSaleService(store, store.SaleRepo())
		p := seedProduct(t, store, tenantID, "P", true, 1000)
		seedStock(store, branchID, p.ID, 3)

		_, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items: []CheckoutItemInput{item(p.ID, 5, 1000)},
		})
		require.Error(t, err)
		de, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INSUFFICIENT_STOCK", de.Code)
		assert.Contains(t, de.Message, "P")

		assert.True(t, store.levels[inventory.StockKey{BranchID: branchID, ProductID: p.ID}].Equal(decimal.NewFromInt(3)), "stock remains 3")
		assert.Empty(t, store.sales, "no sale row was created")
		assert.Empty(t, store.movements)
	})

	t.Run("empty cart is rejected before any write", func(t *testing.T) {
		store := newFakeStore()
		service := NewSaleService(store, store.SaleRepo())

		_, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{})
		require.Error(t, err)
		assert.Equal(t, "EMPTY_CART", err.(*shared.DomainError).Code)
	})

	t.Run("unknown product rolls back", func(t *testing.T) {
		store := newFakeStore()
		service := NewSaleService(store, store.SaleRepo())

		_, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items: []CheckoutItemInput{item(uuid.New(), 1, 1000)},
		})
		require.Error(t, err)
		assert.Empty(t, store.sales)
	})

	t.Run("zero subtotal is rejected", func(t *testing.T) {
		store := newFakeStore()
		service := NewSaleService(store, store.SaleRepo())
		freebie := seedProduct(t, store, tenantID, "Freebie", false, 0)

		_, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items: []CheckoutItemInput{item(freebie.ID, 2, 0)},
		})
		require.Error(t, err)
		assert.Equal(t, "ZERO_SUBTOTAL", err.(*shared.DomainError).Code)
	})

	t.Run("untracked products need no stock", func(t *testing.T) {
		store := newFakeStore()
		service := NewSaleService(store, store.SaleRepo())
		service2 := seedProduct(t, store, tenantID, "Consulting", false, 20000)

		resp, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items: []CheckoutItemInput{item(service2.ID, 3, 20000)},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(60000), resp.Total.Units())
		assert.Empty(t, store.movements)
	})

	t.Run("catalog price is used when the cart omits one", func(t *testing.T) {
		store := newFakeStore()
		service := NewSaleService(store, store.SaleRepo())
		widget := seedProduct(t, store, tenantID, "Widget", true, 12345)
		seedStock(store, branchID, widget.ID, 5)

		resp, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items: []CheckoutItemInput{{ProductID: widget.ID, Quantity: decimal.NewFromInt(1)}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(12345), resp.Subtotal.Units())
	})

	t.Run("supplied invoice number must be unused", func(t *testing.T) {
		store := newFakeStore()
		service := NewSaleService(store, store.SaleRepo())
		widget := seedProduct(t, store, tenantID, "Widget", true, 1000)
		seedStock(store, branchID, widget.ID, 10)

		_, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items:         []CheckoutItemInput{item(widget.ID, 1, 1000)},
			InvoiceNumber: "INV-2026-77777",
		})
		require.NoError(t, err)

		_, err = service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items:         []CheckoutItemInput{item(widget.ID, 1, 1000)},
			InvoiceNumber: "INV-2026-77777",
		})
		require.Error(t, err)
		assert.Equal(t, "ALREADY_EXISTS", err.(*shared.DomainError).Code)
	})

	t.Run("invoice numbers are sequential per tenant", func(t *testing.T) {
		store := newFakeStore()
		service := NewSaleService(store, store.SaleRepo())
		widget := seedProduct(t, store, tenantID, "Widget", true, 1000)
		seedStock(store, branchID, widget.ID, 10)

		first, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items: []CheckoutItemInput{item(widget.ID, 1, 1000)},
		})
		require.NoError(t, err)
		second, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
			Items: []CheckoutItemInput{item(widget.ID, 1, 1000)},
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
	})
}

func TestSaleService_Checkout_ConcurrentDemand(t *testing.T) {
	// Combined demand 4 exceeds supply 3: at most one submission wins,
	// the loser observes the stock failure after the winner commits.
	ctx := context.Background()
	tenantID := uuid.New()
	branchID := uuid.New()
	store := newFakeStore()
	service := NewSaleService(store, store.SaleRepo())
	p := seedProduct(t, store, tenantID, "Scarce", true, 1000)
	seedStock(store, branchID, p.ID, 3)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
				Items: []CheckoutItemInput{item(p.ID, 2, 1000)},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, stockFailures int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		if de, ok := err.(*shared.DomainError); ok && de.Code == "INSUFFICIENT_STOCK" {
			stockFailures++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, stockFailures)
	assert.True(t, store.levels[inventory.StockKey{BranchID: branchID, ProductID: p.ID}].Equal(decimal.NewFromInt(1)))
	assert.Len(t, store.sales, 1)
}

func TestSaleService_GetByID(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	branchID := uuid.New()
	store := newFakeStore()
	service := NewSaleService(store, store.SaleRepo())
	widget := seedProduct(t, store, tenantID, "Widget", true, 10000)
	seedStock(store, branchID, widget.ID, 10)

	resp, err := service.Checkout(ctx, tenantID, branchID, CheckoutRequest{
		Items: []CheckoutItemInput{item(widget.ID, 2, 10000)},
	})
	require.NoError(t, err)

	detail, err := service.GetByID(ctx, tenantID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.InvoiceNumber, detail.InvoiceNumber)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, int64(20000), detail.Lines[0].LineTotal.Units())

	_, err = service.GetByID(ctx, uuid.New(), resp.ID)
	assert.Equal(t, shared.ErrNotFound, err, "other tenants cannot see the sale")
}
