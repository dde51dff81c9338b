package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// LineItemRequest línea de la orden en la entrada.
type LineItemRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
	Quantity    int64           `json:"quantity" validate:"required,gte=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
}

// CreateOrderRequest body para POST /api/orders. Los totales siempre se recalculan en el servidor.
type CreateOrderRequest struct {
	Kind          string            `json:"kind" validate:"required,oneof=sales service"`
	BranchID      string            `json:"branch_id" validate:"required"`
	CustomerName  string            `json:"customer_name" validate:"max=200"`
	Items         []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxRate       decimal.Decimal   `json:"tax_rate"`
	Discount      decimal.Decimal   `json:"discount"`
	PaymentMethod string            `json:"payment_method" validate:"omitempty,oneof=cash card transfer other"`
	AmountPaid    decimal.Decimal   `json:"amount_paid"`
	Notes         string            `json:"notes" validate:"max=1000"`
}

// UpdateOrderItemsRequest reemplaza líneas, impuesto y descuento de una orden en borrador.
type UpdateOrderItemsRequest struct {
	Items    []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxRate  decimal.Decimal   `json:"tax_rate"`
	Discount decimal.Decimal   `json:"discount"`
}

// RecordPaymentRequest abono a la orden; se suma a lo ya pagado.
type RecordPaymentRequest struct {
	Method string          `json:"method" validate:"required,oneof=cash card transfer other"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentResponse estado de pago derivado.
type PaymentResponse struct {
	Method     string          `json:"method,omitempty"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Change     decimal.Decimal `json:"change"`
	Status     string          `json:"status"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

// TaxResponse impuesto de la orden.
type TaxResponse struct {
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// OrderResponse salida de una orden de venta o de servicio.
type OrderResponse struct {
	ID           string            `json:"id"`
	Number       string            `json:"number"`
	Kind         string            `json:"kind"`
	BranchID     string            `json:"branch_id"`
	CustomerName string            `json:"customer_name,omitempty"`
	Status       string            `json:"status"`
	Items        []entity.LineItem `json:"items"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	Tax          TaxResponse       `json:"tax"`
	Discount     decimal.Decimal   `json:"discount"`
	Total        decimal.Decimal   `json:"total"`
	Payment      PaymentResponse   `json:"payment"`
	Notes        string            `json:"notes,omitempty"`
	CreatedBy    string            `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	CancelledAt  *time.Time        `json:"cancelled_at,omitempty"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// ToLineItems convierte las líneas de entrada; LineTotal lo calcula la calculadora.
func ToLineItems(in []LineItemRequest) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(in))
	for _, it := range in {
		out = append(out, entity.LineItem{
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
		})
	}
	return out
}

// NewOrderResponse mapea la entidad a la salida HTTP.
func NewOrderResponse(o *entity.Order) OrderResponse {
	return OrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		Kind:         string(o.Kind),
		BranchID:     o.BranchID,
		CustomerName: o.CustomerName,
		Status:       string(o.Status),
		Items:        o.Items,
		Subtotal:     o.Subtotal,
		Tax:          TaxResponse{Rate: o.Tax.Rate, Amount: o.Tax.Amount},
		Discount:     o.Discount,
		Total:        o.Total,
		Payment: PaymentResponse{
			Method:     o.Payment.Method,
			AmountPaid: o.Payment.AmountPaid,
			Change:     o.Payment.Change,
			Status:     string(o.Payment.Status),
			PaidAt:     o.Payment.PaidAt,
		},
		Notes:       o.Notes,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		CompletedAt: o.CompletedAt,
		CancelledAt: o.CancelledAt,
	}
}
