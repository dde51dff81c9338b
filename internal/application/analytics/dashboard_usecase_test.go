package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/application/orders"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/infrastructure/memory"
)

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	log := zerolog.Nop()
	runner := inventory.NewRunner(store, 3, log, nil)
	stock := inventory.NewStockService(runner, store.Repos(), log, nil)
	transfers := inventory.NewTransferService(runner, stock, store.Repos(), log, nil)
	orderSvc := orders.NewService(runner, stock, store.Repos(), log)

	now := time.Now().UTC()
	for _, b := range []entity.Branch{{ID: "A", Code: "BOG"}, {ID: "B", Code: "MED"}} {
		b.Name, b.Active, b.CreatedAt, b.UpdatedAt = b.Code, true, now, now
		require.NoError(t, store.Repos().Branches.Create(ctx, &b))
	}
	_, err := stock.Create(ctx, inventory.CreateStockInput{
		ProductID: "p1", BranchID: "A", InitialQuantity: 10, ReorderPoint: 12,
		CostPrice: decimal.NewFromInt(60), SellingPrice: decimal.NewFromInt(100), PerformedBy: "u1",
	})
	require.NoError(t, err)
	_, err = stock.Create(ctx, inventory.CreateStockInput{
		ProductID: "p2", BranchID: "A", InitialQuantity: 5,
		CostPrice: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(20), PerformedBy: "u1",
	})
	require.NoError(t, err)

	tr, err := transfers.Create(ctx, inventory.CreateTransferInput{
		ProductID: "p2", FromBranchID: "A", ToBranchID: "B", Quantity: 2, InitiatedBy: "u1",
	})
	require.NoError(t, err)
	_, err = transfers.Ship(ctx, tr.ID, "u1")
	require.NoError(t, err)

	o, err := orderSvc.Create(ctx, orders.CreateInput{
		Kind: entity.OrderKindSales, BranchID: "A", CreatedBy: "u1",
		Items: []entity.LineItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)
	_, err = orderSvc.Complete(ctx, o.ID, "u1")
	require.NoError(t, err)

	uc := analytics.NewDashboardUseCase(store.Repos())
	sum, err := uc.GetSummary(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.StockRecords)
	assert.Equal(t, int64(12), sum.Units)
	assert.True(t, sum.CostValue.Equal(decimal.NewFromInt(570)), sum.CostValue.String())
	assert.True(t, sum.RetailValue.Equal(decimal.NewFromInt(960)), sum.RetailValue.String())
	assert.True(t, sum.PotentialGain.Equal(decimal.NewFromInt(390)))
	assert.Equal(t, 1, sum.BelowReorder)
	assert.Equal(t, 1, sum.OutgoingTransfers)
	assert.Equal(t, 0, sum.IncomingTransfers)
	assert.Equal(t, 1, sum.MonthlyOrders)
	assert.True(t, sum.MonthlySales.Equal(decimal.NewFromInt(100)))
	assert.NotEmpty(t, sum.DateLabel)

	dest, err := uc.GetSummary(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, 1, dest.IncomingTransfers)
	assert.Zero(t, dest.StockRecords)
	assert.True(t, dest.CostValue.IsZero())

	_, err = uc.GetSummary(ctx, "Z")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
