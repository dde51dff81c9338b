package repository

import (
	"context"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// TransferFilter filtros de listado; los campos vacíos no filtran.
type TransferFilter struct {
	BranchID string // origen o destino
	Status   entity.TransferStatus
	Limit    int
	Offset   int
}

// StockTransferRepository puerto de persistencia de traslados.
type StockTransferRepository interface {
	// Create devuelve domain.ErrSequenceConflict si el TransferNumber colisiona.
	Create(ctx context.Context, t *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	// UpdateStatus persiste t solo si el estado almacenado sigue siendo expected (compare-and-swap).
	// Si otro proceso ganó la carrera devuelve domain.ErrInvalidStateTransition.
	UpdateStatus(ctx context.Context, t *entity.StockTransfer, expected entity.TransferStatus) error
	List(ctx context.Context, f TransferFilter) ([]*entity.StockTransfer, error)
}
