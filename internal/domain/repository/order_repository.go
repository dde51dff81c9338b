package repository

import (
	"context"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// OrderFilter filtros de listado de órdenes.
type OrderFilter struct {
	BranchID string
	Kind     entity.OrderKind
	Status   entity.OrderStatus
	Limit    int
	Offset   int
}

// OrderRepository puerto de persistencia para órdenes de venta y de servicio.
type OrderRepository interface {
	// Create devuelve domain.ErrSequenceConflict si el número colisiona.
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error
	List(ctx context.Context, f OrderFilter) ([]*entity.Order, error)
}
