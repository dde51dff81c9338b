package repository

import (
	"context"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// StockRecordRepository define el puerto de persistencia para registros de stock por (producto, sucursal).
// Las lecturas puntuales devuelven domain.ErrNotFound cuando el registro no existe.
type StockRecordRepository interface {
	// Create falla con domain.ErrDuplicate si ya existe el par (producto, sucursal).
	Create(ctx context.Context, rec *entity.StockRecord) error
	// CreateIfAbsent inserta rec salvo que el par ya exista; en ese caso devuelve false sin error.
	CreateIfAbsent(ctx context.Context, rec *entity.StockRecord) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.StockRecord, error)
	GetByProductBranch(ctx context.Context, productID, branchID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, productID, branchID string) (*entity.StockRecord, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.StockRecord, error)
	Update(ctx context.Context, rec *entity.StockRecord) error
	ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*entity.StockRecord, error)
	// ListBelowReorderPoint registros con disponible < punto de reorden (reorder_point > 0).
	ListBelowReorderPoint(ctx context.Context, branchID string) ([]*entity.StockRecord, error)
}
