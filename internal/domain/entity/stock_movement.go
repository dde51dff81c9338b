package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del kardex (contrato estable con otros servicios).
type MovementType string

const (
	MovementRestock          MovementType = "restock"
	MovementAdjustmentAdd    MovementType = "adjustment_add"
	MovementAdjustmentRemove MovementType = "adjustment_remove"
	MovementSale             MovementType = "sale"
	MovementSaleCancel       MovementType = "sale_cancel"
	MovementServiceUse       MovementType = "service_use"
	MovementTransferOut      MovementType = "transfer_out"
	MovementTransferIn       MovementType = "transfer_in"
	MovementInitial          MovementType = "initial"
)

// MovementTypes todos los tipos en el orden del contrato.
var MovementTypes = []MovementType{
	MovementRestock, MovementAdjustmentAdd, MovementAdjustmentRemove,
	MovementSale, MovementSaleCancel, MovementServiceUse,
	MovementTransferOut, MovementTransferIn, MovementInitial,
}

// IsIncrease tipos que suman cantidad (vía Add).
func (t MovementType) IsIncrease() bool {
	switch t {
	case MovementRestock, MovementAdjustmentAdd, MovementSaleCancel, MovementTransferIn, MovementInitial:
		return true
	}
	return false
}

// IsDecrease tipos que restan cantidad (vía Deduct).
func (t MovementType) IsDecrease() bool {
	switch t {
	case MovementAdjustmentRemove, MovementSale, MovementServiceUse, MovementTransferOut:
		return true
	}
	return false
}

func (t MovementType) IsValid() bool { return t.IsIncrease() || t.IsDecrease() }

// StockMovement entrada del kardex. Solo inserción: nunca se actualiza ni se borra.
// ProductID y BranchID se copian del registro de stock al escribir para consultas rápidas.
type StockMovement struct {
	ID             string
	MovementID     string // SM-YYYY-NNNNNN
	StockRecordID  string
	ProductID      string
	BranchID       string
	Type           MovementType
	QuantityDelta  int64 // positivo entrada, negativo salida
	QuantityBefore int64
	QuantityAfter  int64
	Reference      *Reference
	SupplierID     string
	UnitCost       *decimal.Decimal
	Reason         string
	PerformedBy    string
	IdempotencyKey string // vacío cuando no hay referencia
	CreatedAt      time.Time
}

// Reconciles verifica QuantityAfter == QuantityBefore + QuantityDelta.
func (m *StockMovement) Reconciles() bool {
	return m.QuantityAfter == m.QuantityBefore+m.QuantityDelta
}

// MovementIdempotencyKey clave única derivada de referencia + tipo + registro de stock.
// Una orden con varias líneas genera una clave por registro afectado.
func MovementIdempotencyKey(t MovementType, ref *Reference, stockRecordID string) string {
	if !ref.Valid() {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s:%s", t, ref.DocumentType, ref.DocumentID, stockRecordID)
}
