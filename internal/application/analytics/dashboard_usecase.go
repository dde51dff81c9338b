// Package analytics contiene los casos de uso de reportes por sucursal.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

const summaryPageSize = 200

// DashboardUseCase genera el resumen de una sucursal.
//
// Fuente de datos: repositorios de lectura (sin transacción). Los tres bloques se
// consultan por separado, por lo que el resumen no es una foto atómica.
type DashboardUseCase struct {
	read ports.Repos
	now  func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(read ports.Repos) *DashboardUseCase {
	return &DashboardUseCase{read: read, now: time.Now}
}

// GetSummary construye el BranchSummaryDTO de la sucursal indicada.
//
// Tres lecturas en paralelo:
//  1. registros de stock      → valorización y bajo punto de reorden
//  2. traslados in-transit    → entrantes y salientes
//  3. órdenes completadas     → ventas del mes
func (uc *DashboardUseCase) GetSummary(ctx context.Context, branchID string) (*dto.BranchSummaryDTO, error) {
	if _, err := uc.read.Branches.GetByID(ctx, branchID); err != nil {
		return nil, err
	}
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type stockResult struct {
		records []*entity.StockRecord
		err     error
	}
	type transfersResult struct {
		list []*entity.StockTransfer
		err  error
	}
	type ordersResult struct {
		list []*entity.Order
		err  error
	}

	stockCh := make(chan stockResult, 1)
	transfersCh := make(chan transfersResult, 1)
	ordersCh := make(chan ordersResult, 1)

	go func() {
		records, err := collect(func(limit, offset int) ([]*entity.StockRecord, error) {
			return uc.read.Stock.ListByBranch(ctx, branchID, limit, offset)
		})
		stockCh <- stockResult{records, err}
	}()
	go func() {
		list, err := collect(func(limit, offset int) ([]*entity.StockTransfer, error) {
			return uc.read.Transfers.List(ctx, repository.TransferFilter{
				BranchID: branchID, Status: entity.TransferInTransit, Limit: limit, Offset: offset,
			})
		})
		transfersCh <- transfersResult{list, err}
	}()
	go func() {
		list, err := collect(func(limit, offset int) ([]*entity.Order, error) {
			return uc.read.Orders.List(ctx, repository.OrderFilter{
				BranchID: branchID, Status: entity.OrderCompleted, Limit: limit, Offset: offset,
			})
		})
		ordersCh <- ordersResult{list, err}
	}()

	stock := <-stockCh
	transfers := <-transfersCh
	orders := <-ordersCh

	if stock.err != nil {
		return nil, fmt.Errorf("resumen: stock: %w", stock.err)
	}
	if transfers.err != nil {
		return nil, fmt.Errorf("resumen: traslados: %w", transfers.err)
	}
	if orders.err != nil {
		return nil, fmt.Errorf("resumen: órdenes: %w", orders.err)
	}

	out := &dto.BranchSummaryDTO{
		BranchID:     branchID,
		StockRecords: len(stock.records),
		CostValue:    decimal.Zero,
		RetailValue:  decimal.Zero,
		MonthlySales: decimal.Zero,
		DateLabel:    monthLabel(now),
	}
	for _, rec := range stock.records {
		qty := decimal.NewFromInt(rec.Quantity)
		out.Units += rec.Quantity
		out.ReservedUnits += rec.ReservedQuantity
		out.CostValue = out.CostValue.Add(qty.Mul(rec.CostPrice))
		out.RetailValue = out.RetailValue.Add(qty.Mul(rec.SellingPrice))
		if rec.BelowReorderPoint() {
			out.BelowReorder++
		}
	}
	out.CostValue = out.CostValue.Round(2)
	out.RetailValue = out.RetailValue.Round(2)
	out.PotentialGain = out.RetailValue.Sub(out.CostValue)

	for _, t := range transfers.list {
		if t.ToBranchID == branchID {
			out.IncomingTransfers++
		} else {
			out.OutgoingTransfers++
		}
	}
	for _, o := range orders.list {
		if o.CompletedAt == nil || o.CompletedAt.Before(monthStart) {
			continue
		}
		out.MonthlyOrders++
		out.MonthlySales = out.MonthlySales.Add(o.Total)
	}
	out.MonthlySales = out.MonthlySales.Round(2)
	return out, nil
}

// collect recorre todas las páginas de un listado.
func collect[T any](list func(limit, offset int) ([]T, error)) ([]T, error) {
	var out []T
	for offset := 0; ; offset += summaryPageSize {
		page, err := list(summaryPageSize, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < summaryPageSize {
			return out, nil
		}
	}
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
