package inventory

import (
	"testing"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStockLevel(t *testing.T, qty int64) *StockLevel {
	t.Helper()
	level, err := NewStockLevel(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	if qty > 0 {
		require.NoError(t, level.Credit(decimal.NewFromInt(qty)))
	}
	return level
}

func TestNewStockLevel(t *testing.T) {
	t.Run("starts at zero", func(t *testing.T) {
		level := newTestStockLevel(t, 0)
		assert.True(t, level.Quantity.IsZero())
	})

	t.Run("rejects empty product", func(t *testing.T) {
		_, err := NewStockLevel(uuid.New(), uuid.New(), uuid.Nil)
		require.Error(t, err)
	})

	t.Run("allows the zero branch", func(t *testing.T) {
		// Tenants without configured branches operate under the nil branch
		level, err := NewStockLevel(uuid.New(), uuid.Nil, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, level.BranchID)
	})
}

func TestStockLevel_Credit(t *testing.T) {
	level := newTestStockLevel(t, 0)

	require.NoError(t, level.Credit(decimal.NewFromInt(10)))
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(10)))

	require.Error(t, level.Credit(decimal.Zero))
	require.Error(t, level.Credit(decimal.NewFromInt(-5)))
}

func TestStockLevel_Debit(t *testing.T) {
	level := newTestStockLevel(t, 10)

	require.NoError(t, level.Debit(decimal.NewFromInt(4)))
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(6)))

	t.Run("never goes negative", func(t *testing.T) {
		err := level.Debit(decimal.NewFromInt(7))
		require.Error(t, err)
		assert.Equal(t, shared.ErrInsufficientStock, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(6)), "failed debit leaves quantity untouched")
	})

	t.Run("can reach exactly zero", func(t *testing.T) {
		require.NoError(t, level.Debit(decimal.NewFromInt(6)))
		assert.True(t, level.Quantity.IsZero())
	})
}

func TestStockLevel_ApplyDelta(t *testing.T) {
	level := newTestStockLevel(t, 5)

	require.NoError(t, level.ApplyDelta(decimal.NewFromInt(3)))
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(8)))

	require.NoError(t, level.ApplyDelta(decimal.NewFromInt(-2)))
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(6)))

	require.Error(t, level.ApplyDelta(decimal.Zero))
}

func TestStockLevel_CanFulfill(t *testing.T) {
	level := newTestStockLevel(t, 3)

	assert.True(t, level.CanFulfill(decimal.NewFromInt(3)))
	assert.True(t, level.CanFulfill(decimal.NewFromInt(1)))
	assert.False(t, level.CanFulfill(decimal.NewFromInt(5)))
}

func TestStockMovement_SignedQuantity(t *testing.T) {
	in, err := NewStockMovement(uuid.New(), uuid.New(), uuid.New(), MovementIn, decimal.NewFromInt(4), ReasonAdjustment, SourceDocManual, nil, "")
	require.NoError(t, err)
	assert.True(t, in.SignedQuantity().Equal(decimal.NewFromInt(4)))

	out, err := NewStockMovement(uuid.New(), uuid.New(), uuid.New(), MovementOut, decimal.NewFromInt(4), ReasonSale, SourceDocSale, nil, "")
	require.NoError(t, err)
	assert.True(t, out.SignedQuantity().Equal(decimal.NewFromInt(-4)))
}

func TestNewStockMovement_Validation(t *testing.T) {
	_, err := NewStockMovement(uuid.New(), uuid.New(), uuid.New(), MovementDirection("SIDEWAYS"), decimal.NewFromInt(1), ReasonSale, SourceDocSale, nil, "")
	require.Error(t, err)

	_, err = NewStockMovement(uuid.New(), uuid.New(), uuid.New(), MovementIn, decimal.Zero, ReasonSale, SourceDocSale, nil, "")
	require.Error(t, err)
}
