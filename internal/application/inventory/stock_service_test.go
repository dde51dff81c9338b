package inventory_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

func sale(qty int64, orderID string) inventory.MovementInput {
	in := inventory.MovementInput{Quantity: qty, Type: entity.MovementSale, PerformedBy: actor}
	if orderID != "" {
		in.Reference = entity.SalesOrderRef(orderID)
	}
	return in
}

func TestCreate_RegistraMovimientoInicial(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 40)

	assert.Equal(t, int64(40), rec.Quantity)
	movs, err := f.stock.ListMovements(context.Background(), rec.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementInitial, movs[0].Type)
	assert.Equal(t, int64(0), movs[0].QuantityBefore)
	assert.Equal(t, int64(40), movs[0].QuantityAfter)
	assert.Equal(t, seq(entity.SequenceMovement, 1), movs[0].MovementID)
}

func TestCreate_SinCantidadInicialNoEscribeKardex(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 0)

	movs, err := f.stock.ListMovements(context.Background(), rec.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestCreate_Errores(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	f.record(t, "p1", "b1", 1)
	ctx := context.Background()

	_, err := f.stock.Create(ctx, inventory.CreateStockInput{ProductID: "p1", BranchID: "b1", PerformedBy: actor})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.stock.Create(ctx, inventory.CreateStockInput{ProductID: "p1", BranchID: "no-existe", PerformedBy: actor})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.stock.Create(ctx, inventory.CreateStockInput{ProductID: "p2", BranchID: "b1", CostPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_PrecioDeVentaMenorAlCostoSoloAdvierte(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	_, err := f.stock.Create(context.Background(), inventory.CreateStockInput{
		ProductID: "p1", BranchID: "b1", CostPrice: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(8),
	})
	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), "precio de venta menor al costo")
}

// Escenario A: reserva y venta de la misma cantidad.
func TestReservaYVenta(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 100)
	ctx := context.Background()

	got, err := f.stock.Reserve(ctx, rec.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(30), got.ReservedQuantity)
	assert.Equal(t, int64(70), got.Available())

	m, err := f.stock.Deduct(ctx, rec.ID, sale(30, "o1"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), m.QuantityBefore)
	assert.Equal(t, int64(70), m.QuantityAfter)
	assert.Equal(t, int64(-30), m.QuantityDelta)
	assert.Equal(t, seq(entity.SequenceMovement, 2), m.MovementID)
	assert.Equal(t, "sale:sales_order:o1:"+rec.ID, m.IdempotencyKey)

	after, err := f.stock.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), after.Quantity)
	assert.Equal(t, int64(0), after.ReservedQuantity)
}

// Escenario B: un descuento mayor a la existencia no deja rastro.
func TestDeduct_StockInsuficienteNoEscribeKardex(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 10)
	ctx := context.Background()

	_, err := f.stock.Deduct(ctx, rec.ID, sale(15, "o1"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	after, err := f.stock.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), after.Quantity)
	movs, err := f.stock.ListMovements(ctx, rec.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "solo el movimiento inicial")
	assert.Contains(t, f.scrape(t), `inventory_insufficient_stock_total{operation="sale"} 1`)
}

func TestReserveRelease_RestauraReserva(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 20)
	ctx := context.Background()

	_, err := f.stock.Reserve(ctx, rec.ID, 4)
	require.NoError(t, err)
	_, err = f.stock.Reserve(ctx, rec.ID, 6)
	require.NoError(t, err)
	got, err := f.stock.Release(ctx, rec.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ReservedQuantity)

	_, err = f.stock.Reserve(ctx, rec.ID, 17)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	movs, err := f.stock.ListMovements(ctx, rec.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "reservar y liberar no escriben kardex")
}

func TestDeduct_MismaReferenciaSeRechaza(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 10)
	ctx := context.Background()

	_, err := f.stock.Deduct(ctx, rec.ID, sale(2, "o-77"))
	require.NoError(t, err)
	_, err = f.stock.Deduct(ctx, rec.ID, sale(2, "o-77"))
	require.ErrorIs(t, err, domain.ErrDuplicateMovement)

	after, err := f.stock.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), after.Quantity, "el segundo intento no descuenta")

	// otro tipo con la misma referencia sí procede
	_, err = f.stock.Add(ctx, rec.ID, inventory.MovementInput{
		Quantity: 2, Type: entity.MovementSaleCancel, Reference: entity.SalesOrderRef("o-77"), PerformedBy: actor,
	})
	require.NoError(t, err)
}

func TestDeduct_SinReservaAdvierteYCuenta(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 50)
	ctx := context.Background()

	_, err := f.stock.Reserve(ctx, rec.ID, 5)
	require.NoError(t, err)
	_, err = f.stock.Deduct(ctx, rec.ID, sale(20, "o1"))
	require.NoError(t, err)

	after, err := f.stock.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.ReservedQuantity)
	assert.Equal(t, int64(30), after.Quantity)
	assert.Contains(t, f.logs.String(), "reserved llevado a 0")
	assert.Contains(t, f.scrape(t), "inventory_reserved_clamped_total 1")
}

func TestDeduct_ValidaTipoYActor(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 10)
	ctx := context.Background()

	_, err := f.stock.Deduct(ctx, rec.ID, inventory.MovementInput{Quantity: 1, Type: entity.MovementRestock, PerformedBy: actor})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.stock.Deduct(ctx, rec.ID, inventory.MovementInput{Quantity: 1, Type: entity.MovementSale})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.stock.Deduct(ctx, rec.ID, inventory.MovementInput{
		Quantity: 1, Type: entity.MovementSale, PerformedBy: actor,
		Reference: &entity.Reference{DocumentType: "invoice", DocumentID: "x"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.stock.Deduct(ctx, "no-existe", sale(1, ""))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdd_RestockRecalculaCosto(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 10) // costo 100
	ctx := context.Background()

	cost := decimal.NewFromInt(200)
	m, err := f.stock.Add(ctx, rec.ID, inventory.MovementInput{
		Quantity: 10, Type: entity.MovementRestock, SupplierID: "sup-1", UnitCost: &cost, PerformedBy: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), m.QuantityDelta)
	assert.Equal(t, "sup-1", m.SupplierID)

	after, err := f.stock.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), after.Quantity)
	assert.True(t, after.CostPrice.Equal(decimal.NewFromInt(150)), "costo %s", after.CostPrice)
}

func TestAdjust(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 5)
	ctx := context.Background()

	m, err := f.stock.Adjust(ctx, inventory.AdjustInput{StockID: rec.ID, Delta: 3, Reason: "conteo físico", PerformedBy: actor})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAdjustmentAdd, m.Type)

	m, err = f.stock.Adjust(ctx, inventory.AdjustInput{StockID: rec.ID, Delta: -8, Reason: "merma", PerformedBy: actor})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAdjustmentRemove, m.Type)
	assert.Equal(t, int64(0), m.QuantityAfter)

	_, err = f.stock.Adjust(ctx, inventory.AdjustInput{StockID: rec.ID, Delta: -1, Reason: "merma", PerformedBy: actor})
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)
	_, err = f.stock.Adjust(ctx, inventory.AdjustInput{StockID: rec.ID, Delta: 0, Reason: "nada", PerformedBy: actor})
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)
	_, err = f.stock.Adjust(ctx, inventory.AdjustInput{StockID: rec.ID, Delta: 2, PerformedBy: actor})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKardex_Cuadra(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 30)
	ctx := context.Background()

	_, err := f.stock.Deduct(ctx, rec.ID, sale(7, "o1"))
	require.NoError(t, err)
	_, err = f.stock.Add(ctx, rec.ID, inventory.MovementInput{Quantity: 12, Type: entity.MovementRestock, PerformedBy: actor})
	require.NoError(t, err)
	_, err = f.stock.Adjust(ctx, inventory.AdjustInput{StockID: rec.ID, Delta: -5, Reason: "daño", PerformedBy: actor})
	require.NoError(t, err)

	movs, err := f.stock.ListMovements(ctx, rec.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 4)
	// más reciente primero: cada before es el after del movimiento anterior
	for i, m := range movs {
		assert.True(t, m.Reconciles(), m.MovementID)
		if i+1 < len(movs) {
			assert.Equal(t, movs[i+1].QuantityAfter, m.QuantityBefore)
		}
	}
	after, err := f.stock.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, movs[0].QuantityAfter, after.Quantity)

	branchMovs, err := f.stock.ListBranchMovements(ctx, repository.MovementFilter{BranchID: "b1", Type: entity.MovementRestock})
	require.NoError(t, err)
	assert.Len(t, branchMovs, 1)
}

func TestDeduct_Concurrente(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 10)

	var ok, rejected atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 25; i++ {
		g.Go(func() error {
			_, err := f.stock.Deduct(ctx, rec.ID, sale(1, ""))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(10), ok.Load())
	assert.Equal(t, int64(15), rejected.Load())

	after, err := f.stock.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.Quantity)
	assert.True(t, after.Consistent())

	movs, err := f.stock.ListMovements(context.Background(), rec.ID, 100, 0)
	require.NoError(t, err)
	require.Len(t, movs, 11)
	ids := map[string]bool{}
	for _, m := range movs {
		assert.False(t, ids[m.MovementID], "consecutivo repetido %s", m.MovementID)
		ids[m.MovementID] = true
	}
}

func TestConsecutivo_ReintentaTrasColision(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 10) // SM-...-000001
	year := entityYear()
	f.store.SetSequence(entity.SequenceMovement, year, 0)

	m, err := f.stock.Deduct(context.Background(), rec.ID, sale(1, ""))
	require.NoError(t, err)
	assert.Equal(t, seq(entity.SequenceMovement, 2), m.MovementID)
	assert.Contains(t, f.scrape(t), `inventory_sequence_retries_total{operation="deduct"} 1`)
}

func TestConsecutivo_AgotaReintentos(t *testing.T) {
	f := newFixture(t)
	f.branch(t, "b1", "BOG")
	rec := f.record(t, "p1", "b1", 10)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := f.stock.Add(ctx, rec.ID, inventory.MovementInput{Quantity: 1, Type: entity.MovementRestock, PerformedBy: actor})
		require.NoError(t, err)
	}
	f.store.SetSequence(entity.SequenceMovement, entityYear(), 0)

	_, err := f.stock.Deduct(ctx, rec.ID, sale(1, ""))
	require.ErrorIs(t, err, domain.ErrConflict)

	after, err := f.stock.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), after.Quantity, "sin cambios tras agotar los intentos")
}
