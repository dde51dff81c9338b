package inventory_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-sucursales/internal/observability"
)

const actor = "user-1"

type fixture struct {
	store     *memory.Store
	metrics   *observability.Metrics
	logs      *bytes.Buffer
	stock     *inventory.StockService
	transfers *inventory.TransferService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	metrics := observability.NewMetrics()
	logs := &bytes.Buffer{}
	log := zerolog.New(logs)
	runner := inventory.NewRunner(store, inventory.DefaultRetryAttempts, log, metrics)
	stock := inventory.NewStockService(runner, store.Repos(), log, metrics)
	return &fixture{
		store:     store,
		metrics:   metrics,
		logs:      logs,
		stock:     stock,
		transfers: inventory.NewTransferService(runner, stock, store.Repos(), log, metrics),
	}
}

func (f *fixture) branch(t *testing.T, id, code string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.store.Repos().Branches.Create(context.Background(), &entity.Branch{
		ID: id, Code: code, Name: "Sucursal " + code, Active: true, CreatedAt: now, UpdatedAt: now,
	}))
}

func (f *fixture) record(t *testing.T, productID, branchID string, qty int64) *entity.StockRecord {
	t.Helper()
	rec, err := f.stock.Create(context.Background(), inventory.CreateStockInput{
		ProductID:       productID,
		BranchID:        branchID,
		InitialQuantity: qty,
		CostPrice:       decimal.NewFromInt(100),
		SellingPrice:    decimal.NewFromInt(150),
		PerformedBy:     actor,
	})
	require.NoError(t, err)
	return rec
}

func (f *fixture) scrape(t *testing.T) string {
	t.Helper()
	rr := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(body)
}

func seq(kind entity.SequenceKind, n int64) string {
	return entity.FormatSequence(kind, time.Now().UTC().Year(), n)
}

func entityYear() int { return time.Now().UTC().Year() }
