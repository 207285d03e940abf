package inventory

import (
	"context"
	"testing"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStockStore backs both repositories with a plain map so ledger tests
// can observe exactly which rows were read, locked and written.
type fakeStockStore struct {
	levels     map[StockKey]*StockLevel
	movements  []StockMovement
	lockedKeys [][]StockKey
	saves      int
	creates    int
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{levels: make(map[StockKey]*StockLevel)}
}

func (f *fakeStockStore) seed(t *testing.T, tenantID uuid.UUID, key StockKey, qty int64) {
	t.Helper()
	level, err := NewStockLevel(tenantID, key.BranchID, key.ProductID)
	require.NoError(t, err)
	if qty > 0 {
		require.NoError(t, level.Credit(decimal.NewFromInt(qty)))
	}
	f.levels[key] = level
}

func (f *fakeStockStore) quantity(key StockKey) decimal.Decimal {
	if level, ok := f.levels[key]; ok {
		return level.Quantity
	}
	return decimal.Zero
}

func (f *fakeStockStore) LockForUpdate(_ context.Context, _ uuid.UUID, keys []StockKey) (map[StockKey]*StockLevel, error) {
	f.lockedKeys = append(f.lockedKeys, keys)
	out := make(map[StockKey]*StockLevel)
	for _, key := range keys {
		if level, ok := f.levels[key]; ok {
			out[key] = level
		}
	}
	return out, nil
}

func (f *fakeStockStore) FindByKey(_ context.Context, _ uuid.UUID, branchID, productID uuid.UUID) (*StockLevel, error) {
	if level, ok := f.levels[StockKey{BranchID: branchID, ProductID: productID}]; ok {
		return level, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeStockStore) FindByBranch(_ context.Context, _ uuid.UUID, _ uuid.UUID, _ shared.Filter) ([]StockLevel, int64, error) {
	return nil, 0, nil
}

func (f *fakeStockStore) Save(_ context.Context, level *StockLevel) error {
	f.saves++
	f.levels[StockKey{BranchID: level.BranchID, ProductID: level.ProductID}] = level
	return nil
}

func (f *fakeStockStore) Create(_ context.Context, level *StockLevel) error {
	key := StockKey{BranchID: level.BranchID, ProductID: level.ProductID}
	if _, exists := f.levels[key]; exists {
		return shared.ErrAlreadyExists
	}
	f.creates++
	f.levels[key] = level
	return nil
}

func (f *fakeStockStore) Append(_ context.Context, movement *StockMovement) error {
	f.movements = append(f.movements, *movement)
	return nil
}

func (f *fakeStockStore) FindBySource(_ context.Context, _ uuid.UUID, _ SourceDocType, _ uuid.UUID) ([]StockMovement, error) {
	return f.movements, nil
}

func (f *fakeStockStore) SumForScope(_ context.Context, _ uuid.UUID, branchID, productID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range f.movements {
		if m.BranchID == branchID && m.ProductID == productID {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	return sum, nil
}

func trackedProduct(t *testing.T, tenantID uuid.UUID, name string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, "SKU-"+name, name, true, valueobject.NewMoney(1000))
	require.NoError(t, err)
	return product
}

func untrackedProduct(t *testing.T, tenantID uuid.UUID, name string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, "SKU-"+name, name, false, valueobject.NewMoney(1000))
	require.NoError(t, err)
	return product
}

func TestStockLedger_DecrementForSale(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	branchID := uuid.New()

	t.Run("debits rows and appends movements", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		widget := trackedProduct(t, tenantID, "Widget")
		gadget := trackedProduct(t, tenantID, "Gadget")
		store.seed(t, tenantID, StockKey{BranchID: branchID, ProductID: widget.ID}, 10)
		store.seed(t, tenantID, StockKey{BranchID: branchID, ProductID: gadget.ID}, 5)

		saleID := uuid.New()
		err := ledger.DecrementForSale(ctx, tenantID, branchID,
			map[uuid.UUID]decimal.Decimal{
				widget.ID: decimal.NewFromInt(3),
				gadget.ID: decimal.NewFromInt(5),
			},
			map[uuid.UUID]*catalog.Product{widget.ID: widget, gadget.ID: gadget},
			saleID,
		)
		require.NoError(t, err)

		assert.True(t, store.quantity(StockKey{BranchID: branchID, ProductID: widget.ID}).Equal(decimal.NewFromInt(7)))
		assert.True(t, store.quantity(StockKey{BranchID: branchID, ProductID: gadget.ID}).IsZero())
		require.Len(t, store.movements, 2)
		for _, m := range store.movements {
			assert.Equal(t, MovementOut, m.Direction)
			assert.Equal(t, ReasonSale, m.Reason)
			require.NotNil(t, m.SourceID)
			assert.Equal(t, saleID, *m.SourceID)
		}
	})

	t.Run("insufficient stock aborts with zero side effects", func(t *testing.T) {
		// product P at the branch has stock 3, the sale asks for 5
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		p := trackedProduct(t, tenantID, "P")
		store.seed(t, tenantID, StockKey{BranchID: branchID, ProductID: p.ID}, 3)

		err := ledger.DecrementForSale(ctx, tenantID, branchID,
			map[uuid.UUID]decimal.Decimal{p.ID: decimal.NewFromInt(5)},
			map[uuid.UUID]*catalog.Product{p.ID: p},
			uuid.New(),
		)
		require.Error(t, err)
		de, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INSUFFICIENT_STOCK", de.Code)
		assert.Contains(t, de.Message, "P")

		assert.True(t, store.quantity(StockKey{BranchID: branchID, ProductID: p.ID}).Equal(decimal.NewFromInt(3)), "stock remains 3")
		assert.Empty(t, store.movements)
		assert.Zero(t, store.saves)
	})

	t.Run("one failing product rejects every line", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		rich := trackedProduct(t, tenantID, "Rich")
		poor := trackedProduct(t, tenantID, "Poor")
		store.seed(t, tenantID, StockKey{BranchID: branchID, ProductID: rich.ID}, 100)
		store.seed(t, tenantID, StockKey{BranchID: branchID, ProductID: poor.ID}, 1)

		err := ledger.DecrementForSale(ctx, tenantID, branchID,
			map[uuid.UUID]decimal.Decimal{
				rich.ID: decimal.NewFromInt(1),
				poor.ID: decimal.NewFromInt(2),
			},
			map[uuid.UUID]*catalog.Product{rich.ID: rich, poor.ID: poor},
			uuid.New(),
		)
		require.Error(t, err)
		assert.True(t, store.quantity(StockKey{BranchID: branchID, ProductID: rich.ID}).Equal(decimal.NewFromInt(100)), "no partial decrement")
		assert.Empty(t, store.movements)
	})

	t.Run("missing row reads as zero stock", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		ghost := trackedProduct(t, tenantID, "Ghost")

		err := ledger.DecrementForSale(ctx, tenantID, branchID,
			map[uuid.UUID]decimal.Decimal{ghost.ID: decimal.NewFromInt(1)},
			map[uuid.UUID]*catalog.Product{ghost.ID: ghost},
			uuid.New(),
		)
		require.Error(t, err)
		assert.Equal(t, "INSUFFICIENT_STOCK", err.(*shared.DomainError).Code)
	})

	t.Run("untracked products are skipped", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		service := untrackedProduct(t, tenantID, "Service")

		err := ledger.DecrementForSale(ctx, tenantID, branchID,
			map[uuid.UUID]decimal.Decimal{service.ID: decimal.NewFromInt(99)},
			map[uuid.UUID]*catalog.Product{service.ID: service},
			uuid.New(),
		)
		require.NoError(t, err)
		assert.Empty(t, store.movements)
		assert.Empty(t, store.lockedKeys, "no lock is taken for untracked products")
	})

	t.Run("locks are acquired in stable key order", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		products := make(map[uuid.UUID]*catalog.Product)
		demand := make(map[uuid.UUID]decimal.Decimal)
		for i := 0; i < 8; i++ {
			p := trackedProduct(t, tenantID, "Bulk")
			products[p.ID] = p
			demand[p.ID] = decimal.NewFromInt(1)
			store.seed(t, tenantID, StockKey{BranchID: branchID, ProductID: p.ID}, 10)
		}

		require.NoError(t, ledger.DecrementForSale(ctx, tenantID, branchID, demand, products, uuid.New()))
		require.Len(t, store.lockedKeys, 1)
		keys := store.lockedKeys[0]
		for i := 1; i < len(keys); i++ {
			assert.True(t, keys[i-1].Less(keys[i]), "lock keys must be sorted")
		}
	})
}

func TestStockLedger_Adjust(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	branchID := uuid.New()

	t.Run("positive delta on missing row inserts it", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		widget := trackedProduct(t, tenantID, "Widget")

		level, err := ledger.Adjust(ctx, tenantID, branchID, widget, decimal.NewFromInt(7), "initial count")
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(7)))
		assert.Equal(t, 1, store.creates, "row is inserted, not updated")
		assert.True(t, store.quantity(StockKey{BranchID: branchID, ProductID: widget.ID}).Equal(decimal.NewFromInt(7)))
		require.Len(t, store.movements, 1)
		assert.Equal(t, MovementIn, store.movements[0].Direction)
		assert.Equal(t, ReasonAdjustment, store.movements[0].Reason)
	})

	t.Run("negative delta on missing row fails", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		widget := trackedProduct(t, tenantID, "Widget")

		_, err := ledger.Adjust(ctx, tenantID, branchID, widget, decimal.NewFromInt(-1), "shrinkage")
		require.Error(t, err)
		assert.Equal(t, "INSUFFICIENT_STOCK", err.(*shared.DomainError).Code)
	})

	t.Run("negative delta below zero fails and leaves the row", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		widget := trackedProduct(t, tenantID, "Widget")
		store.seed(t, tenantID, StockKey{BranchID: branchID, ProductID: widget.ID}, 2)

		_, err := ledger.Adjust(ctx, tenantID, branchID, widget, decimal.NewFromInt(-5), "shrinkage")
		require.Error(t, err)
		assert.True(t, store.quantity(StockKey{BranchID: branchID, ProductID: widget.ID}).Equal(decimal.NewFromInt(2)))
		assert.Empty(t, store.movements)
	})

	t.Run("rejects untracked products", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		service := untrackedProduct(t, tenantID, "Service")

		_, err := ledger.Adjust(ctx, tenantID, branchID, service, decimal.NewFromInt(1), "oops")
		require.Error(t, err)
		assert.Equal(t, "NOT_STOCK_TRACKED", err.(*shared.DomainError).Code)
	})

	t.Run("movement sum reconciles with stock level", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		widget := trackedProduct(t, tenantID, "Widget")

		for _, delta := range []int64{10, -3, 5} {
			_, err := ledger.Adjust(ctx, tenantID, branchID, widget, decimal.NewFromInt(delta), "count")
			require.NoError(t, err)
		}

		sum, err := store.SumForScope(ctx, tenantID, branchID, widget.ID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(store.quantity(StockKey{BranchID: branchID, ProductID: widget.ID})))
	})
}

func TestStockLedger_ApplyTransfer(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	branchA := uuid.New()
	branchB := uuid.New()

	t.Run("moves quantity and creates destination row", func(t *testing.T) {
		// product Q: branch A has 12, branch B has no row; transfer 10
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		q := trackedProduct(t, tenantID, "Q")
		store.seed(t, tenantID, StockKey{BranchID: branchA, ProductID: q.ID}, 12)

		transfer, err := NewStockTransfer(tenantID, "TRF-2026-00001", branchA, branchB,
			[]StockTransferLine{transferLine(q.ID, 10)})
		require.NoError(t, err)

		require.NoError(t, ledger.ApplyTransfer(ctx, transfer, map[uuid.UUID]*catalog.Product{q.ID: q}))

		assert.True(t, store.quantity(StockKey{BranchID: branchA, ProductID: q.ID}).Equal(decimal.NewFromInt(2)), "A ends at 2")
		assert.True(t, store.quantity(StockKey{BranchID: branchB, ProductID: q.ID}).Equal(decimal.NewFromInt(10)), "B row created with 10")
		assert.Equal(t, 1, store.creates)

		require.Len(t, store.movements, 2)
		directions := map[MovementDirection]uuid.UUID{}
		for _, m := range store.movements {
			directions[m.Direction] = m.BranchID
		}
		assert.Equal(t, branchA, directions[MovementOut])
		assert.Equal(t, branchB, directions[MovementIn])
	})

	t.Run("single failing line aborts the whole transfer", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		ok := trackedProduct(t, tenantID, "OK")
		short := trackedProduct(t, tenantID, "Short")
		store.seed(t, tenantID, StockKey{BranchID: branchA, ProductID: ok.ID}, 50)
		store.seed(t, tenantID, StockKey{BranchID: branchA, ProductID: short.ID}, 1)

		transfer, err := NewStockTransfer(tenantID, "TRF-2026-00002", branchA, branchB, []StockTransferLine{
			transferLine(ok.ID, 5),
			transferLine(short.ID, 2),
		})
		require.NoError(t, err)

		err = ledger.ApplyTransfer(ctx, transfer, map[uuid.UUID]*catalog.Product{ok.ID: ok, short.ID: short})
		require.Error(t, err)
		assert.Equal(t, "INSUFFICIENT_STOCK", err.(*shared.DomainError).Code)
		assert.True(t, store.quantity(StockKey{BranchID: branchA, ProductID: ok.ID}).Equal(decimal.NewFromInt(50)), "both branches untouched")
		assert.Empty(t, store.movements)
	})

	t.Run("duplicate lines are aggregated for the source check", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		q := trackedProduct(t, tenantID, "Q")
		store.seed(t, tenantID, StockKey{BranchID: branchA, ProductID: q.ID}, 5)

		transfer, err := NewStockTransfer(tenantID, "TRF-2026-00003", branchA, branchB, []StockTransferLine{
			transferLine(q.ID, 3),
			transferLine(q.ID, 3),
		})
		require.NoError(t, err)

		err = ledger.ApplyTransfer(ctx, transfer, map[uuid.UUID]*catalog.Product{q.ID: q})
		require.Error(t, err, "combined demand 6 exceeds stock 5")
	})

	t.Run("locks both branch rows in stable order", func(t *testing.T) {
		store := newFakeStockStore()
		ledger := NewStockLedger(store, store)
		q := trackedProduct(t, tenantID, "Q")
		store.seed(t, tenantID, StockKey{BranchID: branchA, ProductID: q.ID}, 10)
		store.seed(t, tenantID, StockKey{BranchID: branchB, ProductID: q.ID}, 1)

		transfer, err := NewStockTransfer(tenantID, "TRF-2026-00004", branchA, branchB,
			[]StockTransferLine{transferLine(q.ID, 2)})
		require.NoError(t, err)

		require.NoError(t, ledger.ApplyTransfer(ctx, transfer, map[uuid.UUID]*catalog.Product{q.ID: q}))
		require.Len(t, store.lockedKeys, 1)
		keys := store.lockedKeys[0]
		require.Len(t, keys, 2)
		assert.True(t, keys[0].Less(keys[1]))
	})
}
