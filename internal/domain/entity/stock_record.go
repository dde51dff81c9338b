package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa el stock de un producto en una sucursal. Hay uno por (ProductID, BranchID)
// y nunca se elimina: los registros en cero se conservan para la continuidad de la auditoría.
type StockRecord struct {
	ID               string
	ProductID        string
	BranchID         string
	Quantity         int64 // unidades físicamente presentes
	ReservedQuantity int64 // retenidas (checkout, órdenes abiertas); siempre <= Quantity
	ReorderPoint     int64
	ReorderQuantity  int64
	CostPrice        decimal.Decimal
	SellingPrice     decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available cantidad vendible ahora mismo.
func (s *StockRecord) Available() int64 {
	if s.ReservedQuantity >= s.Quantity {
		return 0
	}
	return s.Quantity - s.ReservedQuantity
}

// Consistent verifica 0 <= ReservedQuantity <= Quantity.
func (s *StockRecord) Consistent() bool {
	return s.Quantity >= 0 && s.ReservedQuantity >= 0 && s.ReservedQuantity <= s.Quantity
}

// BelowReorderPoint indica si la disponibilidad cayó por debajo del punto de reorden.
func (s *StockRecord) BelowReorderPoint() bool {
	return s.ReorderPoint > 0 && s.Available() < s.ReorderPoint
}
