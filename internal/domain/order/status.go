package order

import (
	"fmt"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

var statusTransitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderDraft:     {entity.OrderCompleted, entity.OrderCancelled},
	entity.OrderCompleted: {entity.OrderCancelled},
}

// CheckStatusTransition draft -> completed | cancelled y completed -> cancelled.
func CheckStatusTransition(from, to entity.OrderStatus) error {
	for _, s := range statusTransitions[from] {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("%w: orden %s -> %s", domain.ErrInvalidStateTransition, from, to)
}
