package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// MovementFilter filtros para listar el kardex de una sucursal.
type MovementFilter struct {
	BranchID string
	From, To *time.Time
	Type     entity.MovementType
	Limit    int
	Offset   int
}

// StockMovementRepository puerto del kardex. Solo inserción: no hay Update ni Delete.
type StockMovementRepository interface {
	// Create devuelve domain.ErrDuplicateMovement si la clave de idempotencia ya existe
	// y domain.ErrSequenceConflict si el MovementID colisiona.
	Create(ctx context.Context, m *entity.StockMovement) error
	GetByMovementID(ctx context.Context, movementID string) (*entity.StockMovement, error)
	ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error)
	ListByStockRecord(ctx context.Context, stockRecordID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByBranch(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, ref entity.Reference) ([]*entity.StockMovement, error)
}
