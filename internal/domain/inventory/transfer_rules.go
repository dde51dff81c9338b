package inventory

import (
	"fmt"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// transitions estados destino permitidos desde cada estado.
var transitions = map[entity.TransferStatus][]entity.TransferStatus{
	entity.TransferPending:   {entity.TransferInTransit, entity.TransferCancelled},
	entity.TransferInTransit: {entity.TransferCompleted, entity.TransferCancelled},
}

// CanTransition indica si from -> to es un paso adyacente de la máquina de estados.
func CanTransition(from, to entity.TransferStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition devuelve ErrInvalidStateTransition si el paso no está permitido.
func CheckTransition(from, to entity.TransferStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, from, to)
	}
	return nil
}

// ValidateNewTransfer reglas de creación: sucursales distintas y cantidad >= 1.
func ValidateNewTransfer(productID, fromBranchID, toBranchID string, qty int64) error {
	if productID == "" || fromBranchID == "" || toBranchID == "" {
		return fmt.Errorf("%w: producto y sucursales son obligatorios", domain.ErrInvalidTransfer)
	}
	if fromBranchID == toBranchID {
		return fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidTransfer)
	}
	if qty < 1 {
		return fmt.Errorf("%w: la cantidad debe ser al menos 1", domain.ErrInvalidTransfer)
	}
	return nil
}
