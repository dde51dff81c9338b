package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/application/orders"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
	"github.com/jhoicas/Inventario-sucursales/internal/infrastructure/memory"
)

const actor = "cajero-1"

type fixture struct {
	stock  *inventory.StockService
	orders *orders.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := zerolog.Nop()
	runner := inventory.NewRunner(store, 3, log, nil)
	stock := inventory.NewStockService(runner, store.Repos(), log, nil)

	now := time.Now().UTC()
	require.NoError(t, store.Repos().Branches.Create(context.Background(), &entity.Branch{
		ID: "b1", Code: "BOG", Name: "Bogotá", Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	return &fixture{stock: stock, orders: orders.NewService(runner, stock, store.Repos(), log)}
}

func (f *fixture) stockOf(t *testing.T, product string, qty int64) *entity.StockRecord {
	t.Helper()
	rec, err := f.stock.Create(context.Background(), inventory.CreateStockInput{
		ProductID: product, BranchID: "b1", InitialQuantity: qty,
		CostPrice: decimal.NewFromInt(60), SellingPrice: decimal.NewFromInt(100), PerformedBy: actor,
	})
	require.NoError(t, err)
	return rec
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func salesInput(items ...entity.LineItem) orders.CreateInput {
	return orders.CreateInput{
		Kind:      entity.OrderKindSales,
		BranchID:  "b1",
		Items:     items,
		TaxRate:   d("12"),
		CreatedBy: actor,
	}
}

func line(product string, qty int64) entity.LineItem {
	return entity.LineItem{ProductID: product, Quantity: qty, UnitPrice: d("100")}
}

func TestCreate_CalculaTotalesYConsecutivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	o, err := f.orders.Create(ctx, salesInput(line("p1", 2)))
	require.NoError(t, err)
	assert.Equal(t, entity.FormatSequence(entity.SequenceSalesOrder, year, 1), o.Number)
	assert.Equal(t, entity.OrderDraft, o.Status)
	assert.True(t, o.Subtotal.Equal(d("200")))
	assert.True(t, o.Tax.Amount.Equal(d("24")))
	assert.True(t, o.Total.Equal(d("224")))
	assert.Equal(t, entity.PaymentPending, o.Payment.Status)

	in := salesInput(line("p1", 1))
	in.Kind = entity.OrderKindService
	job, err := f.orders.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, entity.FormatSequence(entity.SequenceServiceOrder, year, 1), job.Number)
}

func TestCreate_Invalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := salesInput(line("p1", 1))
	in.Discount = d("500")
	_, err := f.orders.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "total negativo")

	_, err = f.orders.Create(ctx, salesInput())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = salesInput(line("p1", 1))
	in.BranchID = "otra"
	_, err = f.orders.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordPayment_ParcialLuegoPagado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, err := f.orders.Create(ctx, salesInput(line("p1", 2)))
	require.NoError(t, err)

	o, err = f.orders.RecordPayment(ctx, o.ID, "cash", d("100"))
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPartial, o.Payment.Status)
	assert.Nil(t, o.Payment.PaidAt)

	o, err = f.orders.RecordPayment(ctx, o.ID, "cash", d("150"))
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, o.Payment.Status)
	assert.True(t, o.Payment.Change.Equal(d("26")))
	require.NotNil(t, o.Payment.PaidAt)
	paidAt := *o.Payment.PaidAt

	o, err = f.orders.RecordPayment(ctx, o.ID, "card", d("1"))
	require.NoError(t, err)
	assert.Equal(t, paidAt, *o.Payment.PaidAt, "paidAt no se sobrescribe")

	_, err = f.orders.RecordPayment(ctx, o.ID, "cash", d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplete_DescuentaPorProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.stockOf(t, "p1", 10)
	p2 := f.stockOf(t, "p2", 4)

	o, err := f.orders.Create(ctx, salesInput(line("p1", 2), line("p2", 4), line("p1", 1)))
	require.NoError(t, err)
	o, err = f.orders.Complete(ctx, o.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, o.Status)
	require.NotNil(t, o.CompletedAt)

	r1, err := f.stock.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), r1.Quantity)
	r2, err := f.stock.GetByID(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), r2.Quantity)

	movs, err := f.stock.MovementsByReference(ctx, *entity.SalesOrderRef(o.ID))
	require.NoError(t, err)
	require.Len(t, movs, 2, "un movimiento por registro de stock")
	for _, m := range movs {
		assert.Equal(t, entity.MovementSale, m.Type)
	}

	_, err = f.orders.Complete(ctx, o.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestComplete_DescuentoManualConLaOrdenSeRechaza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.stockOf(t, "p1", 10)

	o, err := f.orders.Create(ctx, salesInput(line("p1", 2)))
	require.NoError(t, err)
	_, err = f.stock.Deduct(ctx, p1.ID, inventory.MovementInput{
		Quantity: 2, Type: entity.MovementSale, Reference: entity.SalesOrderRef(o.ID), PerformedBy: actor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.stock.Add(ctx, p1.ID, inventory.MovementInput{
		Quantity: 2, Type: entity.MovementSaleCancel, Reference: entity.SalesOrderRef(o.ID), PerformedBy: actor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	o, err = f.orders.Complete(ctx, o.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, o.Status)
	r1, err := f.stock.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), r1.Quantity)

	o, err = f.orders.Cancel(ctx, o.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, o.Status)
}

func TestComplete_OrdenDeServicioUsaServiceUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stockOf(t, "repuesto", 3)

	in := salesInput(line("repuesto", 1))
	in.Kind = entity.OrderKindService
	o, err := f.orders.Create(ctx, in)
	require.NoError(t, err)
	_, err = f.orders.Complete(ctx, o.ID, "tecnico")
	require.NoError(t, err)

	movs, err := f.stock.MovementsByReference(ctx, *entity.ServiceOrderRef(o.ID))
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementServiceUse, movs[0].Type)
	assert.Equal(t, "tecnico", movs[0].PerformedBy)
}

func TestComplete_SinStockNoAplicaNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.stockOf(t, "p1", 10)
	f.stockOf(t, "p2", 1)

	o, err := f.orders.Create(ctx, salesInput(line("p1", 2), line("p2", 5)))
	require.NoError(t, err)
	_, err = f.orders.Complete(ctx, o.ID, actor)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	r1, err := f.stock.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), r1.Quantity, "la primera línea se revierte")

	stored, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDraft, stored.Status)
}

func TestCancel_OrdenCompletadaRestituye(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.stockOf(t, "p1", 10)

	o, err := f.orders.Create(ctx, salesInput(line("p1", 4)))
	require.NoError(t, err)
	_, err = f.orders.Complete(ctx, o.ID, actor)
	require.NoError(t, err)
	o, err = f.orders.Cancel(ctx, o.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, o.Status)

	r1, err := f.stock.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), r1.Quantity)

	movs, err := f.stock.MovementsByReference(ctx, *entity.SalesOrderRef(o.ID))
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementSaleCancel, movs[1].Type)

	_, err = f.orders.Cancel(ctx, o.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestCancel_BorradorNoMueveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stockOf(t, "p1", 10)

	o, err := f.orders.Create(ctx, salesInput(line("p1", 4)))
	require.NoError(t, err)
	_, err = f.orders.Cancel(ctx, o.ID, actor)
	require.NoError(t, err)

	movs, err := f.stock.MovementsByReference(ctx, *entity.SalesOrderRef(o.ID))
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestUpdateItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stockOf(t, "p1", 10)

	o, err := f.orders.Create(ctx, salesInput(line("p1", 1)))
	require.NoError(t, err)
	o, err = f.orders.UpdateItems(ctx, o.ID, []entity.LineItem{line("p1", 3)}, d("0"), d("50"))
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(d("250")))
	assert.True(t, o.Tax.Amount.IsZero())

	_, err = f.orders.Complete(ctx, o.ID, actor)
	require.NoError(t, err)
	_, err = f.orders.UpdateItems(ctx, o.ID, []entity.LineItem{line("p1", 1)}, d("0"), d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	list, err := f.orders.List(ctx, repository.OrderFilter{Status: entity.OrderCompleted})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
