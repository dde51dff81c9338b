package dto

import "github.com/shopspring/decimal"

// BranchSummaryDTO respuesta de GET /api/branches/:id/summary.
// Foto del inventario de la sucursal más la actividad del mes en curso.
type BranchSummaryDTO struct {
	BranchID string `json:"branch_id"`

	// Inventario valorizado
	StockRecords  int             `json:"stock_records"`
	Units         int64           `json:"units"`
	ReservedUnits int64           `json:"reserved_units"`
	CostValue     decimal.Decimal `json:"cost_value"`     // sum(cantidad * costo)
	RetailValue   decimal.Decimal `json:"retail_value"`   // sum(cantidad * precio de venta)
	PotentialGain decimal.Decimal `json:"potential_gain"` // retail - cost
	BelowReorder  int             `json:"below_reorder"`

	// Traslados en tránsito
	IncomingTransfers int `json:"incoming_transfers"`
	OutgoingTransfers int `json:"outgoing_transfers"`

	// Órdenes completadas del mes en curso (día 1 – hoy)
	MonthlyOrders int             `json:"monthly_orders"`
	MonthlySales  decimal.Decimal `json:"monthly_sales"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}
