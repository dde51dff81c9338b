// Package order deriva totales y estado de pago de órdenes de venta y de servicio.
// Es una función pura: la invoca el caso de uso antes de persistir, nunca un hook implícito.
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Input datos que el llamador controla.
type Input struct {
	Items      []entity.LineItem
	TaxRate    decimal.Decimal // 0-100; cero si la orden no lleva impuesto
	Discount   decimal.Decimal // descuento a nivel de orden
	AmountPaid decimal.Decimal
	PaidAt     *time.Time // PaidAt vigente; no se sobrescribe
}

// Result valores derivados.
type Result struct {
	Items         []entity.LineItem // con LineTotal calculado
	Subtotal      decimal.Decimal
	Tax           entity.Tax
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Change        decimal.Decimal
	PaymentStatus entity.PaymentStatus
	PaidAt        *time.Time
}

// Calculate aplica, en orden: total por línea, subtotal, impuesto, total, cambio y estado de pago.
// now solo se usa para sellar PaidAt en la primera transición a paid.
func Calculate(in Input, now time.Time) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	res := Result{
		Items:    make([]entity.LineItem, len(in.Items)),
		Subtotal: decimal.Zero,
		Discount: in.Discount,
	}
	for i, it := range in.Items {
		it.LineTotal = decimal.NewFromInt(it.Quantity).Mul(it.UnitPrice).Sub(it.Discount)
		res.Items[i] = it
		res.Subtotal = res.Subtotal.Add(it.LineTotal)
	}

	res.Tax = entity.Tax{Rate: decimal.Zero, Amount: decimal.Zero}
	if !in.TaxRate.IsZero() {
		res.Tax = entity.Tax{Rate: in.TaxRate, Amount: res.Subtotal.Mul(in.TaxRate).Div(hundred)}
	}

	res.Total = res.Subtotal.Add(res.Tax.Amount).Sub(in.Discount)
	if res.Total.IsNegative() {
		return Result{}, fmt.Errorf("%w: el total de la orden no puede ser negativo (%s)", domain.ErrInvalidInput, res.Total)
	}

	res.Change = decimal.Max(decimal.Zero, in.AmountPaid.Sub(res.Total))
	res.PaymentStatus = PaymentStatusFor(in.AmountPaid, res.Total)

	res.PaidAt = in.PaidAt
	if res.PaymentStatus == entity.PaymentPaid && res.PaidAt == nil {
		stamp := now
		res.PaidAt = &stamp
	}
	return res, nil
}

// PaymentStatusFor pending si no hay pago, partial si es menor al total, paid si lo cubre.
func PaymentStatusFor(amountPaid, total decimal.Decimal) entity.PaymentStatus {
	switch {
	case amountPaid.IsZero():
		return entity.PaymentPending
	case amountPaid.LessThan(total):
		return entity.PaymentPartial
	default:
		return entity.PaymentPaid
	}
}

// Apply recalcula la orden en sitio. Es la única vía para escribir totales y estado de pago.
func Apply(o *entity.Order, now time.Time) error {
	res, err := Calculate(Input{
		Items:      o.Items,
		TaxRate:    o.Tax.Rate,
		Discount:   o.Discount,
		AmountPaid: o.Payment.AmountPaid,
		PaidAt:     o.Payment.PaidAt,
	}, now)
	if err != nil {
		return err
	}
	o.Items = res.Items
	o.Subtotal = res.Subtotal
	o.Tax = res.Tax
	o.Total = res.Total
	o.Payment.Change = res.Change
	o.Payment.Status = res.PaymentStatus
	o.Payment.PaidAt = res.PaidAt
	return nil
}

func validate(in Input) error {
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		return fmt.Errorf("%w: tasa de impuesto fuera de 0-100", domain.ErrInvalidInput)
	}
	if in.Discount.IsNegative() {
		return fmt.Errorf("%w: descuento negativo", domain.ErrInvalidInput)
	}
	if in.AmountPaid.IsNegative() {
		return fmt.Errorf("%w: monto pagado negativo", domain.ErrInvalidInput)
	}
	for i, it := range in.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: línea %d con cantidad menor a 1", domain.ErrInvalidInput, i+1)
		}
		if it.UnitPrice.IsNegative() || it.Discount.IsNegative() {
			return fmt.Errorf("%w: línea %d con precio o descuento negativo", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}
