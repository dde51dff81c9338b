// Package inventory contiene las reglas puras sobre registros de stock y traslados.
// No conoce persistencia: la capa de aplicación bloquea el registro, aplica la regla
// y escribe el kardex con el Change resultante dentro de la misma transacción.
package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// Change resultado de una mutación de cantidad, listo para el kardex.
type Change struct {
	Before int64
	After  int64
	Delta  int64
	// ReservedClamped unidades descontadas sin reserva previa (reserved se llevó a 0).
	ReservedClamped int64
}

// Reserve retiene qty unidades sin cambiar la cantidad física.
func Reserve(rec *entity.StockRecord, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: cantidad a reservar debe ser positiva", domain.ErrInvalidInput)
	}
	if rec.Available() < qty {
		return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, rec.Available(), qty)
	}
	rec.ReservedQuantity += qty
	return nil
}

// Release libera hasta qty unidades reservadas; nunca deja reserved por debajo de cero.
func Release(rec *entity.StockRecord, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: cantidad a liberar debe ser positiva", domain.ErrInvalidInput)
	}
	rec.ReservedQuantity -= qty
	if rec.ReservedQuantity < 0 {
		rec.ReservedQuantity = 0
	}
	return nil
}

// Deduct resta qty de la cantidad física y consume la reserva correspondiente.
// Si qty supera lo reservado, reserved se lleva a 0 y se informa en ReservedClamped.
func Deduct(rec *entity.StockRecord, qty int64) (Change, error) {
	if qty <= 0 {
		return Change{}, fmt.Errorf("%w: cantidad a descontar debe ser positiva", domain.ErrInvalidInput)
	}
	if qty > rec.Quantity {
		return Change{}, fmt.Errorf("%w: existencia %d, solicitado %d", domain.ErrInsufficientStock, rec.Quantity, qty)
	}
	ch := Change{Before: rec.Quantity, Delta: -qty}
	rec.Quantity -= qty
	if qty > rec.ReservedQuantity {
		ch.ReservedClamped = qty - rec.ReservedQuantity
		rec.ReservedQuantity = 0
	} else {
		rec.ReservedQuantity -= qty
	}
	ch.After = rec.Quantity
	return ch, nil
}

// Add suma qty a la cantidad física.
func Add(rec *entity.StockRecord, qty int64) (Change, error) {
	if qty <= 0 {
		return Change{}, fmt.Errorf("%w: cantidad a ingresar debe ser positiva", domain.ErrInvalidInput)
	}
	if rec.Quantity > math.MaxInt64-qty {
		return Change{}, fmt.Errorf("%w: existencia %d no admite %d unidades más", domain.ErrInvalidInput, rec.Quantity, qty)
	}
	ch := Change{Before: rec.Quantity, Delta: qty}
	rec.Quantity += qty
	ch.After = rec.Quantity
	return ch, nil
}

// CheckAdjustment valida un ajuste manual con signo antes de componerlo con Add/Deduct.
func CheckAdjustment(rec *entity.StockRecord, delta int64) error {
	if delta == 0 {
		return fmt.Errorf("%w: el ajuste no puede ser cero", domain.ErrInvalidAdjustment)
	}
	if delta > 0 && rec.Quantity > math.MaxInt64-delta {
		return fmt.Errorf("%w: existencia %d, ajuste %d fuera de rango", domain.ErrInvalidAdjustment, rec.Quantity, delta)
	}
	if rec.Quantity+delta < 0 {
		return fmt.Errorf("%w: existencia %d, ajuste %d", domain.ErrInvalidAdjustment, rec.Quantity, delta)
	}
	return nil
}
