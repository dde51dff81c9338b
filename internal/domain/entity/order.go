package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind distingue ventas de mostrador y órdenes de servicio (taller).
type OrderKind string

const (
	OrderKindSales   OrderKind = "sales"
	OrderKindService OrderKind = "service"
)

// SequenceKind prefijo del consecutivo de la orden (SO- / JOB-).
func (k OrderKind) SequenceKind() SequenceKind {
	if k == OrderKindService {
		return SequenceServiceOrder
	}
	return SequenceSalesOrder
}

// ConsumptionMovement tipo de movimiento con que se descuentan las líneas al completar.
func (k OrderKind) ConsumptionMovement() MovementType {
	if k == OrderKindService {
		return MovementServiceUse
	}
	return MovementSale
}

// Reference referencia polimórfica para el kardex.
func (k OrderKind) Reference(orderID string) *Reference {
	if k == OrderKindService {
		return ServiceOrderRef(orderID)
	}
	return SalesOrderRef(orderID)
}

func (k OrderKind) IsValid() bool { return k == OrderKindSales || k == OrderKindService }

// OrderStatus estado de la orden a nivel documento.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// PaymentStatus estado de pago derivado de AmountPaid vs Total.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// LineItem línea de la orden. LineTotal es derivado: Quantity*UnitPrice - Discount.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	Description string          `json:"description,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Tax impuesto de la orden. Rate en porcentaje (0-100).
type Tax struct {
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// Payment datos de pago; Change, Status y PaidAt son derivados.
type Payment struct {
	Method     string
	AmountPaid decimal.Decimal
	Change     decimal.Decimal
	Status     PaymentStatus
	PaidAt     *time.Time
}

// Order agregado compartido por órdenes de venta y de servicio.
// Subtotal, Tax.Amount, Total y el estado de pago solo los escribe la calculadora de totales.
type Order struct {
	ID           string
	Number       string // SO-YYYY-NNNNNN / JOB-YYYY-NNNNNN
	Kind         OrderKind
	BranchID     string
	CustomerName string
	Status       OrderStatus
	Items        []LineItem
	Subtotal     decimal.Decimal
	Tax          Tax
	Discount     decimal.Decimal
	Total        decimal.Decimal
	Payment      Payment
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
}
