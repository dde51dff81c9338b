package repository

import (
	"context"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// BranchRepository define el puerto de persistencia para Branch (DIP).
type BranchRepository interface {
	// Create devuelve domain.ErrDuplicate si el código ya existe.
	Create(ctx context.Context, b *entity.Branch) error
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	Update(ctx context.Context, b *entity.Branch) error
	List(ctx context.Context, limit, offset int) ([]*entity.Branch, error)
}
