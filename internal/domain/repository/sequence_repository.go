package repository

import (
	"context"

	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

// SequenceRepository contador atómico por (prefijo, año).
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor; el primero del año es 1.
	Next(ctx context.Context, kind entity.SequenceKind, year int) (int64, error)
}
