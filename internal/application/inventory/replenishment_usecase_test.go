package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
)

func TestReplenishment_OrdenaPorDeficit(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	ctx := context.Background()

	mk := func(product string, qty, reorderPoint, reorderQty int64) {
		_, err := f.stock.Create(ctx, inventory.CreateStockInput{
			ProductID: product, BranchID: "b1", InitialQuantity: qty,
			CostPrice: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(15),
			ReorderPoint: reorderPoint, ReorderQuantity: reorderQty, PerformedBy: actor,
		})
		require.NoError(t, err)
	}
	mk("p-ok", 50, 10, 20)    // sobre el punto de reorden
	mk("p-leve", 8, 10, 20)   // déficit 2, sugiere 20
	mk("p-grave", 1, 40, 5)   // déficit 39, sugiere 39
	mk("p-sin-rp", 0, 0, 100) // sin punto de reorden

	// una reserva también reduce el disponible
	rec, err := f.stock.Get(ctx, "p-ok", "b1")
	require.NoError(t, err)
	_, err = f.stock.Reserve(ctx, rec.ID, 45)
	require.NoError(t, err) // disponible 5 < 10: déficit 5

	uc := inventory.NewReplenishmentUseCase(f.store.Repos().Stock)
	list, err := uc.GenerateReplenishmentList(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "p-grave", list[0].ProductID)
	assert.Equal(t, int64(39), list[0].Deficit)
	assert.Equal(t, int64(39), list[0].SuggestedOrderQty)
	assert.True(t, list[0].EstimatedOrderCost.Equal(decimal.NewFromInt(390)))
	assert.Equal(t, 1, list[0].Priority)

	assert.Equal(t, "p-ok", list[1].ProductID)
	assert.Equal(t, int64(20), list[1].SuggestedOrderQty)

	assert.Equal(t, "p-leve", list[2].ProductID)
	assert.Equal(t, int64(2), list[2].Deficit)
	assert.Equal(t, 3, list[2].Priority)

	_, err = uc.GenerateReplenishmentList(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
